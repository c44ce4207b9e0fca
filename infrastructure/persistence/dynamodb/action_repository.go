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

// ActionRepository implements ports.ActionRepository using DynamoDB.
// Actions sort under the user partition by occurrence date, so both
// recency and time-range reads are single key-condition queries.
type ActionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewActionRepository creates a new ActionRepository
func NewActionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ActionRepository {
	return &ActionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// actionItem represents the DynamoDB item structure for an action
type actionItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	ActionID   string `dynamodbav:"ActionID"`
	UserID     string `dynamodbav:"UserID"`
	Text       string `dynamodbav:"Text"`
	Pillar     string `dynamodbav:"Pillar"`
	OccurredAt string `dynamodbav:"OccurredAt"`
	Rationale  string `dynamodbav:"Rationale,omitempty"`
}

func (i actionItem) toEntity() (entities.Action, error) {
	occurredAt, err := time.Parse(time.RFC3339, i.OccurredAt)
	if err != nil {
		return entities.Action{}, fmt.Errorf("failed to parse action timestamp: %w", err)
	}
	return entities.Action{
		ID:         i.ActionID,
		UserID:     i.UserID,
		Text:       i.Text,
		Pillar:     entities.Pillar(i.Pillar),
		OccurredAt: occurredAt,
		Rationale:  i.Rationale,
	}, nil
}

// ListRecent retrieves the newest actions for a user, newest first
func (r *ActionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]entities.Action, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "ACTION#"},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query actions",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}

	return r.unmarshalItems(result.Items)
}

// ListSince retrieves all actions on or after the given time, newest
// first. The timestamp-prefixed sort key makes this a key-range query.
func (r *ActionRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]entities.Action, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").Between(
			expression.Value(fmt.Sprintf("ACTION#%s", since.UTC().Format(time.RFC3339))),
			expression.Value("ACTION#~"),
		))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build action query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query actions by range",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Time("since", since),
		)
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}

	return r.unmarshalItems(result.Items)
}

func (r *ActionRepository) unmarshalItems(items []map[string]types.AttributeValue) ([]entities.Action, error) {
	actions := make([]entities.Action, 0, len(items))
	for _, raw := range items {
		var item actionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action: %w", err)
		}
		action, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}
