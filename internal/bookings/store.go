package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-salon-bookings/internal/aws"
)

var (
	// ErrStatusMismatch is returned by UpdateStatus when the current status
	// is not the expected one.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
	// ErrDuplicateKey is returned when the idempotency key already exists.
	ErrDuplicateKey = errors.New("idempotency key already exists")
)

// Store encapsulates operations on the bookings table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new bookings Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// CreateWithIdempotencyTransaction atomically creates:
//   - idempotency record in idempotencyTable (with ConditionExpression attribute_not_exists(idempotency_key))
//   - booking record in the bookings table
//
// idempotencyItem must marshal to a map carrying idempotency_key. When it has
// no expires_at and ttlWindow > 0, one is added. ErrDuplicateKey is returned
// when the key is already taken.
func (s *Store) CreateWithIdempotencyTransaction(ctx context.Context, idempotencyTable string, idempotencyItem interface{}, b Booking, ttlWindow time.Duration) error {
	idempMap, err := attributevalue.MarshalMap(idempotencyItem)
	if err != nil {
		return fmt.Errorf("marshal idempotency item: %w", err)
	}

	now := s.nowFunc()
	if _, ok := idempMap["expires_at"]; !ok && ttlWindow > 0 {
		expires := now.Add(ttlWindow).Unix()
		idempMap["expires_at"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expires)}
	}

	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	bookingMap, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal booking item: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &idempotencyTable,
					Item:                idempMap,
					ConditionExpression: awsString("attribute_not_exists(idempotency_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                bookingMap,
					ConditionExpression: awsString("attribute_not_exists(booking_id)"),
				},
			},
		},
	}

	if _, err := s.client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches a booking by booking_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, bookingID string) (*Booking, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"booking_id": &types.AttributeValueMemberS{Value: bookingID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var b Booking
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, fmt.Errorf("unmarshal booking: %w", err)
	}
	return &b, nil
}

// UpdateStatus conditionally moves a booking from expectedStatus to newStatus.
// Returns ErrStatusMismatch if the condition failed.
func (s *Store) UpdateStatus(ctx context.Context, bookingID, expectedStatus, newStatus string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"booking_id": &types.AttributeValueMemberS{Value: bookingID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var sc *types.ConditionalCheckFailedException
		if errors.As(err, &sc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// IncrementAttempts increases the attempts counter by 1.
func (s *Store) IncrementAttempts(ctx context.Context, bookingID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"booking_id": &types.AttributeValueMemberS{Value: bookingID},
		},
		UpdateExpression: awsString("SET attempts = if_not_exists(attempts, :zero) + :inc, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
