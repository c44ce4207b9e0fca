package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/domain/core/entities"
)

// InsightRepository implements ports.InsightRepository using DynamoDB.
// Insights live under the user partition with a timestamp-prefixed sort
// key, so a descending query returns newest first without a filter.
type InsightRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInsightRepository creates a new InsightRepository
func NewInsightRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InsightRepository {
	return &InsightRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// insightItem represents the DynamoDB item structure for an insight
type insightItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	InsightID  string  `dynamodbav:"InsightID"`
	UserID     string  `dynamodbav:"UserID"`
	Title      string  `dynamodbav:"Title"`
	Body       string  `dynamodbav:"Body"`
	TopicID    string  `dynamodbav:"TopicID,omitempty"`
	Relevance  float64 `dynamodbav:"Relevance"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
}

func (i insightItem) toEntity() (entities.Insight, error) {
	createdAt, err := time.Parse(time.RFC3339, i.CreatedAt)
	if err != nil {
		return entities.Insight{}, fmt.Errorf("failed to parse insight timestamp: %w", err)
	}
	return entities.Insight{
		ID:        i.InsightID,
		UserID:    i.UserID,
		Title:     i.Title,
		Body:      i.Body,
		TopicID:   i.TopicID,
		Relevance: i.Relevance,
		CreatedAt: createdAt,
	}, nil
}

// ListRecent retrieves the newest insights for a user, newest first
func (r *InsightRepository) ListRecent(ctx context.Context, userID string, limit int) ([]entities.Insight, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "INSIGHT#"},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query insights",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}

	return r.unmarshalItems(result.Items)
}

// ListTopByRelevance retrieves the highest-relevance insights. Relevance
// is not a sort key, so the user's insights are fetched and ranked in
// memory; per-user volumes are small enough for that.
func (r *InsightRepository) ListTopByRelevance(ctx context.Context, userID string, limit int) ([]entities.Insight, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "INSIGHT#"},
		},
		ScanIndexForward: aws.Bool(false),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query insights for relevance ranking",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}

	insights, err := r.unmarshalItems(result.Items)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Relevance > insights[j].Relevance
	})
	if len(insights) > limit {
		insights = insights[:limit]
	}
	return insights, nil
}

func (r *InsightRepository) unmarshalItems(items []map[string]types.AttributeValue) ([]entities.Insight, error) {
	insights := make([]entities.Insight, 0, len(items))
	for _, raw := range items {
		var item insightItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insight: %w", err)
		}
		insight, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}
	return insights, nil
}
