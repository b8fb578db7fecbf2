package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClock implements a mock time source for testing
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now.UTC()
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

var _ DynamoDBClient = (*mockDynamoDBClient)(nil)

type mockDynamoDBClient struct {
	queryFunc          func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	batchWriteItemFunc func(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

func (m *mockDynamoDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockDynamoDBClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if m.batchWriteItemFunc != nil {
		return m.batchWriteItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

// memoryTable backs a mock client with an in-memory table keyed by
// (siteId, recordKey).
type memoryTable struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	// batchCalls counts BatchWriteItem calls
	batchCalls int
}

func newMemoryTable() *memoryTable {
	return &memoryTable{items: make(map[string]map[string]types.AttributeValue)}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *memoryTable) put(item map[string]types.AttributeValue) {
	m.items[stringAttr(item, "siteId")+"|"+stringAttr(item, "recordKey")] = item
}

func (m *memoryTable) client() *mockDynamoDBClient {
	return &mockDynamoDBClient{
		batchWriteItemFunc: func(_ context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.batchCalls++
			for _, requests := range params.RequestItems {
				for _, request := range requests {
					if request.PutRequest != nil {
						m.put(request.PutRequest.Item)
					}
					if request.DeleteRequest != nil {
						key := request.DeleteRequest.Key
						delete(m.items, stringAttr(key, "siteId")+"|"+stringAttr(key, "recordKey"))
					}
				}
			}
			return &dynamodb.BatchWriteItemOutput{}, nil
		},
		queryFunc: func(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			site := stringAttr(params.ExpressionAttributeValues, ":site")
			prefix := stringAttr(params.ExpressionAttributeValues, ":prefix")
			var keys []string
			for k, item := range m.items {
				if stringAttr(item, "siteId") == site && strings.HasPrefix(stringAttr(item, "recordKey"), prefix) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			out := &dynamodb.QueryOutput{}
			for _, k := range keys {
				out.Items = append(out.Items, m.items[k])
			}
			return out, nil
		},
	}
}
