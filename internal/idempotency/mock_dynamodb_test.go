package idempotency

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// keyTable is an in-memory idempotency table keyed by idempotency_key.
type keyTable struct {
	mu      sync.Mutex
	items   map[string]map[string]types.AttributeValue
	putErr  error
	puts    int
	updates int
}

func newKeyTable() *keyTable {
	return &keyTable{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(m map[string]types.AttributeValue) (string, error) {
	v, ok := m["idempotency_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing idempotency_key")
	}
	return v.Value, nil
}

func (k *keyTable) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.puts++
	if k.putErr != nil {
		return nil, k.putErr
	}
	key, err := keyOf(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		if _, exists := k.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	k.items[key] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (k *keyTable) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	key, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: k.items[key]}, nil
}

// UpdateItem copies the SET values MarkDone and MarkFailed use onto the item.
func (k *keyTable) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.updates++
	key, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := k.items[key]
	if !ok {
		return nil, errors.New("item not found")
	}
	attrs := map[string]string{
		":done":   "status",
		":failed": "status",
		":rb":     "response_body",
		":rs":     "response_status",
		":n":      "note",
		":ua":     "updated_at",
	}
	for placeholder, attr := range attrs {
		if v, ok := params.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (k *keyTable) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not used by idempotency.Store")
}
