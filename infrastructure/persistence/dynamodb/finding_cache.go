package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/pkg/utils"
)

// FindingCache implements ports.FindingCache using DynamoDB. One item
// per (user, feature) key; writes overwrite unconditionally, matching
// the last-writer-wins policy for duplicate recomputation.
type FindingCache struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// NewFindingCache creates a new FindingCache
func NewFindingCache(client *dynamodb.Client, tableName string, logger *zap.Logger) *FindingCache {
	return &FindingCache{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the cache's clock. Intended for tests.
func (c *FindingCache) WithClock(now func() time.Time) *FindingCache {
	c.now = now
	return c
}

// cacheItem represents the DynamoDB item structure for a cached finding
type cacheItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Payload    string `dynamodbav:"Payload"`
	ComputedAt string `dynamodbav:"ComputedAt"`
}

func (c *FindingCache) itemKey(key ports.CacheKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", key.UserID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CACHE#%s", key.String())},
	}
}

// Get retrieves a fresh entry, nil when absent or expired. An entry
// whose age has reached maxAge is already expired.
func (c *FindingCache) Get(ctx context.Context, key ports.CacheKey, maxAge time.Duration) (*ports.CachedFinding, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(key),
	}

	result, err := c.client.GetItem(ctx, input)
	if err != nil {
		c.logger.Error("Failed to read finding cache",
			zap.Error(err),
			zap.String("key", key.String()),
		)
		return nil, fmt.Errorf("failed to read finding cache: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item cacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	computedAt, err := utils.ParseRFC3339(item.ComputedAt)
	if err != nil {
		c.logger.Warn("Cache entry has malformed timestamp, treating as absent",
			zap.String("key", key.String()),
		)
		return nil, nil
	}
	if c.now().Sub(computedAt) >= maxAge {
		return nil, nil
	}

	return &ports.CachedFinding{
		Payload:    json.RawMessage(item.Payload),
		ComputedAt: computedAt,
	}, nil
}

// Put stores or overwrites an entry
func (c *FindingCache) Put(ctx context.Context, key ports.CacheKey, payload json.RawMessage, computedAt time.Time) error {
	item := cacheItem{
		PK:         fmt.Sprintf("USER#%s", key.UserID),
		SK:         fmt.Sprintf("CACHE#%s", key.String()),
		EntityType: "CACHED_FINDING",
		Payload:    string(payload),
		ComputedAt: computedAt.UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	}
	if _, err := c.client.PutItem(ctx, input); err != nil {
		c.logger.Error("Failed to write finding cache",
			zap.Error(err),
			zap.String("key", key.String()),
		)
		return fmt.Errorf("failed to write finding cache: %w", err)
	}
	return nil
}

// Invalidate removes an entry if present
func (c *FindingCache) Invalidate(ctx context.Context, key ports.CacheKey) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(key),
	}
	if _, err := c.client.DeleteItem(ctx, input); err != nil {
		c.logger.Error("Failed to invalidate finding cache",
			zap.Error(err),
			zap.String("key", key.String()),
		)
		return fmt.Errorf("failed to invalidate finding cache: %w", err)
	}
	return nil
}
