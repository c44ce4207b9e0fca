package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/domain/core/entities"
)

// ObservationRepository implements ports.ObservationRepository using DynamoDB
type ObservationRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewObservationRepository creates a new ObservationRepository
func NewObservationRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ObservationRepository {
	return &ObservationRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// observationItem represents the DynamoDB item structure for an observation
type observationItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	EntityType    string `dynamodbav:"EntityType"`
	ObservationID string `dynamodbav:"ObservationID"`
	UserID        string `dynamodbav:"UserID"`
	Text          string `dynamodbav:"Text"`
	Kind          string `dynamodbav:"Kind"`
	Summary       string `dynamodbav:"Summary,omitempty"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
}

func (i observationItem) toEntity() (entities.Observation, error) {
	createdAt, err := time.Parse(time.RFC3339, i.CreatedAt)
	if err != nil {
		return entities.Observation{}, fmt.Errorf("failed to parse observation timestamp: %w", err)
	}
	return entities.Observation{
		ID:        i.ObservationID,
		UserID:    i.UserID,
		Text:      i.Text,
		Kind:      entities.ObservationKind(i.Kind),
		Summary:   i.Summary,
		CreatedAt: createdAt,
	}, nil
}

// ListRecent retrieves the newest observations for a user, newest first
func (r *ObservationRepository) ListRecent(ctx context.Context, userID string, limit int) ([]entities.Observation, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "OBSERVATION#"},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query observations",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}

	return r.unmarshalItems(result.Items)
}

// ListSummarized retrieves the newest observations carrying a summary.
// Summary presence is not part of the key, so a filter expression runs
// server side over the key-matched items.
func (r *ObservationRepository) ListSummarized(ctx context.Context, userID string, limit int) ([]entities.Observation, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").BeginsWith("OBSERVATION#"))
	filter := expression.Name("Summary").AttributeExists().
		And(expression.Name("Summary").NotEqual(expression.Value("")))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build observation query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query summarized observations",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}

	observations, err := r.unmarshalItems(result.Items)
	if err != nil {
		return nil, err
	}
	if len(observations) > limit {
		observations = observations[:limit]
	}
	return observations, nil
}

func (r *ObservationRepository) unmarshalItems(items []map[string]types.AttributeValue) ([]entities.Observation, error) {
	observations := make([]entities.Observation, 0, len(items))
	for _, raw := range items {
		var item observationItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal observation: %w", err)
		}
		observation, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		observations = append(observations, observation)
	}
	return observations, nil
}
