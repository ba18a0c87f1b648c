package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-salon-bookings/internal/aws"
)

// snapshotItem is the shape persisted in the cart table.
type snapshotItem struct {
	Key       string    `dynamodbav:"cart_key"` // PK
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at,omitempty"` // TTL epoch seconds
}

// Dynamo stores one item per key in a DynamoDB table keyed by cart_key.
type Dynamo struct {
	client    aws.DynamoDBAPI
	tableName string
	ttl       time.Duration
	nowFunc   func() time.Time
}

// NewDynamo returns a Dynamo store. A zero ttl writes no expires_at.
func NewDynamo(client aws.DynamoDBAPI, tableName string, ttl time.Duration) *Dynamo {
	return &Dynamo{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		nowFunc:   time.Now,
	}
}

func (d *Dynamo) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &d.tableName,
		Key: map[string]types.AttributeValue{
			"cart_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return "", false, nil
	}
	var it snapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return "", false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return it.Value, true, nil
}

func (d *Dynamo) Set(ctx context.Context, key, value string) error {
	now := d.nowFunc()
	it := snapshotItem{
		Key:       key,
		Value:     value,
		UpdatedAt: now,
	}
	if d.ttl > 0 {
		it.ExpiresAt = now.Add(d.ttl).Unix()
	}
	item, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}
