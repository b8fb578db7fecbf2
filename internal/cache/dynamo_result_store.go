package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbernstein/shorewatch/internal/config"
	"github.com/bbernstein/shorewatch/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// DynamoResultStore persists analysis rows, one item per (site, kind, capture)
type DynamoResultStore struct {
	client        DynamoDBClient
	tableName     string
	config        *config.CacheConfig
	clock         clock
	retryInterval time.Duration
}

func NewDynamoResultStore(client DynamoDBClient, tableName string, cacheConfig *config.CacheConfig) *DynamoResultStore {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &DynamoResultStore{
		client:        client,
		tableName:     tableName,
		config:        cacheConfig,
		clock:         systemClock{},
		retryInterval: 100 * time.Millisecond,
	}
}

// GetRecords returns every unexpired row of one kind for a site in date order
func (s *DynamoResultStore) GetRecords(ctx context.Context, siteID, kind string) ([]models.ResultRecord, error) {
	var records []models.ResultRecord
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("siteId = :site AND begins_with(recordKey, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":site":   &types.AttributeValueMemberS{Value: siteID},
				":prefix": &types.AttributeValueMemberS{Value: models.RecordKeyPrefix(kind)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("querying results from DynamoDB: %w", err)
		}

		var page []models.ResultRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling result records: %w", err)
		}
		for _, r := range page {
			if s.isValid(r) {
				records = append(records, r)
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return records, nil
}

// ReplaceRecords makes records the complete set of one kind's rows for a
// site: they are written in batches and every other row under the kind's
// prefix is deleted. Failed calls and unprocessed items are retried with
// exponential backoff.
func (s *DynamoResultStore) ReplaceRecords(ctx context.Context, siteID, kind string, records []models.ResultRecord) error {
	keep := make(map[string]bool, len(records))
	for i := range records {
		s.stamp(&records[i])
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("invalid result record: %w", err)
		}
		if records[i].SiteID != siteID || records[i].Kind != kind {
			return fmt.Errorf("invalid result record: %s/%s does not belong to %s/%s",
				records[i].SiteID, records[i].Kind, siteID, kind)
		}
		if keep[records[i].RecordKey] {
			return fmt.Errorf("invalid result record: duplicate key %s", records[i].RecordKey)
		}
		keep[records[i].RecordKey] = true
	}

	existing, err := s.recordKeys(ctx, siteID, kind)
	if err != nil {
		return err
	}

	requests := make([]types.WriteRequest, 0, len(records)+len(existing))
	for _, record := range records {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("marshaling result record: %w", err)
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}
	stale := 0
	for _, key := range existing {
		if keep[key] {
			continue
		}
		stale++
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: itemKey(siteID, key)},
		})
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 || batchSize > 25 {
		batchSize = 25
	}
	for i := 0; i < len(requests); i += batchSize {
		end := i + batchSize
		if end > len(requests) {
			end = len(requests)
		}
		if err := s.writeBatch(ctx, requests[i:end]); err != nil {
			return err
		}
	}

	log.Debug().
		Str("site", siteID).
		Str("kind", kind).
		Int("records", len(records)).
		Int("deleted", stale).
		Msg("Replaced result records")
	return nil
}

// recordKeys lists the sort keys of every row of one kind, expired or not
func (s *DynamoResultStore) recordKeys(ctx context.Context, siteID, kind string) ([]string, error) {
	var keys []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("siteId = :site AND begins_with(recordKey, :prefix)"),
			ProjectionExpression:   aws.String("recordKey"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":site":   &types.AttributeValueMemberS{Value: siteID},
				":prefix": &types.AttributeValueMemberS{Value: models.RecordKeyPrefix(kind)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing result keys in DynamoDB: %w", err)
		}
		for _, item := range out.Items {
			if v, ok := item["recordKey"].(*types.AttributeValueMemberS); ok {
				keys = append(keys, v.Value)
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return keys, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func itemKey(siteID, recordKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"siteId":    &types.AttributeValueMemberS{Value: siteID},
		"recordKey": &types.AttributeValueMemberS{Value: recordKey},
	}
}

func (s *DynamoResultStore) writeBatch(ctx context.Context, pending []types.WriteRequest) error {
	operation := func() error {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: pending},
		})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems[s.tableName]
		if len(pending) > 0 {
			return fmt.Errorf("%d unprocessed items", len(pending))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInterval
	retries := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.config.MaxBatchRetries)), ctx)
	if err := backoff.Retry(operation, retries); err != nil {
		return fmt.Errorf("batch writing results after %d retries: %w", s.config.MaxBatchRetries, err)
	}
	return nil
}

func (s *DynamoResultStore) stamp(record *models.ResultRecord) {
	now := s.clock.Now().Unix()
	record.LastUpdated = now
	record.TTL = now + int64(s.config.GetDynamoTTL().Seconds())
}

func (s *DynamoResultStore) isValid(record models.ResultRecord) bool {
	return s.clock.Now().Unix() < record.TTL
}
