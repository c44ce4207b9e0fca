package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/domain/core/entities"
)

// TopicRepository implements ports.TopicRepository using DynamoDB
type TopicRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewTopicRepository creates a new TopicRepository
func NewTopicRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.TopicRepository {
	return &TopicRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// topicItem represents the DynamoDB item structure for a topic
type topicItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	TopicID    string `dynamodbav:"TopicID"`
	UserID     string `dynamodbav:"UserID"`
	Name       string `dynamodbav:"Name"`
}

// ListAll retrieves every topic for a user
func (r *TopicRepository) ListAll(ctx context.Context, userID string) ([]entities.Topic, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "TOPIC#"},
		},
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query topics",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}

	topics := make([]entities.Topic, 0, len(result.Items))
	for _, raw := range result.Items {
		var item topicItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topic: %w", err)
		}
		topics = append(topics, entities.Topic{
			ID:     item.TopicID,
			UserID: item.UserID,
			Name:   item.Name,
		})
	}
	return topics, nil
}
