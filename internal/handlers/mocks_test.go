package handlers

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// fakeDynamo keeps the idempotency and bookings tables in memory.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: map[string]map[string]map[string]types.AttributeValue{
		"idempotency": {},
		"bookings":    {},
	}}
}

func pkAttr(table string) string {
	if table == "idempotency" {
		return "idempotency_key"
	}
	return "booking_id"
}

func pk(table string, item map[string]types.AttributeValue) (string, error) {
	v, ok := item[pkAttr(table)].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing key attribute")
	}
	return v.Value, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, err := pk(*in.TableName, in.Item)
	if err != nil {
		return nil, err
	}
	if in.ConditionExpression != nil {
		if _, exists := f.tables[*in.TableName][k]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.tables[*in.TableName][k] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, err := pk(*in.TableName, in.Key)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: f.tables[*in.TableName][k]}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, err := pk(*in.TableName, in.Key)
	if err != nil {
		return nil, err
	}
	item, ok := f.tables[*in.TableName][k]
	if !ok {
		return nil, errors.New("item not found")
	}
	set := map[string]string{
		":done":   "status",
		":failed": "status",
		":new":    "status",
		":rb":     "response_body",
		":rs":     "response_status",
		":n":      "note",
		":ua":     "updated_at",
	}
	for placeholder, attr := range set {
		if v, ok := in.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, in *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range in.TransactItems {
		if p := it.Put; p != nil {
			k, err := pk(*p.TableName, p.Item)
			if err != nil {
				return nil, err
			}
			if _, exists := f.tables[*p.TableName][k]; exists {
				return nil, &types.TransactionCanceledException{}
			}
		}
	}
	for _, it := range in.TransactItems {
		if p := it.Put; p != nil {
			k, _ := pk(*p.TableName, p.Item)
			f.tables[*p.TableName][k] = p.Item
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) status(table, key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.tables[table][key]["status"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// fakeSQS records sent bodies and fails while err is set.
type fakeSQS struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.bodies = append(f.bodies, *in.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

func (f *fakeSQS) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
