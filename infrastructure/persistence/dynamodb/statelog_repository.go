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
	apperrors "inward-backend/pkg/errors"
)

// StateLogRepository implements ports.StateLogRepository using DynamoDB.
// Entries carry a GSI1 lookup key so resonance marking can find an
// entry by its ID without knowing its timestamp.
type StateLogRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewStateLogRepository creates a new StateLogRepository
func NewStateLogRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.StateLogRepository {
	return &StateLogRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// stateLogItem represents the DynamoDB item structure for a state log entry
type stateLogItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string `dynamodbav:"GSI1SK,omitempty"`
	EntityType string `dynamodbav:"EntityType"`
	StateLogID string `dynamodbav:"StateLogID"`
	UserID     string `dynamodbav:"UserID"`
	State      string `dynamodbav:"State"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	Resonated  *bool  `dynamodbav:"Resonated,omitempty"`
}

func (i stateLogItem) toEntity() (entities.StateLog, error) {
	createdAt, err := time.Parse(time.RFC3339, i.CreatedAt)
	if err != nil {
		return entities.StateLog{}, fmt.Errorf("failed to parse state log timestamp: %w", err)
	}
	return entities.StateLog{
		ID:        i.StateLogID,
		UserID:    i.UserID,
		State:     i.State,
		CreatedAt: createdAt,
		Resonated: i.Resonated,
	}, nil
}

// ListSince retrieves all state logs on or after the given time, newest
// first
func (r *StateLogRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]entities.StateLog, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").Between(
			expression.Value(fmt.Sprintf("STATELOG#%s", since.UTC().Format(time.RFC3339))),
			expression.Value("STATELOG#~"),
		))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state log query: %w", err)
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
		r.logger.Error("Failed to query state logs",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Time("since", since),
		)
		return nil, fmt.Errorf("failed to query state logs: %w", err)
	}

	logs := make([]entities.StateLog, 0, len(result.Items))
	for _, raw := range result.Items {
		var item stateLogItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state log: %w", err)
		}
		log, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

// MarkResonance records the user's resonance judgement on one entry.
// The entry is located through GSI1 and the update is conditioned on
// ownership, so one user can never mark another user's entry.
func (r *StateLogRepository) MarkResonance(ctx context.Context, userID, logID string, resonated bool) error {
	queryInput := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("STATELOG#%s", logID)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, queryInput)
	if err != nil {
		r.logger.Error("Failed to look up state log",
			zap.Error(err),
			zap.String("stateLogID", logID),
		)
		return fmt.Errorf("failed to look up state log: %w", err)
	}
	if len(result.Items) == 0 {
		return apperrors.NewNotFoundError("state log")
	}

	var item stateLogItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return fmt.Errorf("failed to unmarshal state log: %w", err)
	}
	if item.UserID != userID {
		return apperrors.NewForbiddenError("state log belongs to another user")
	}

	updateInput := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
		UpdateExpression:    aws.String("SET Resonated = :resonated"),
		ConditionExpression: aws.String("UserID = :user"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":resonated": &types.AttributeValueMemberBOOL{Value: resonated},
			":user":      &types.AttributeValueMemberS{Value: userID},
		},
	}

	if _, err := r.client.UpdateItem(ctx, updateInput); err != nil {
		r.logger.Error("Failed to mark resonance",
			zap.Error(err),
			zap.String("stateLogID", logID),
			zap.String("userID", userID),
		)
		return fmt.Errorf("failed to mark resonance: %w", err)
	}
	return nil
}
