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

// ExperimentRepository implements ports.ExperimentRepository using DynamoDB
type ExperimentRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewExperimentRepository creates a new ExperimentRepository
func NewExperimentRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ExperimentRepository {
	return &ExperimentRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// experimentItem represents the DynamoDB item structure for an experiment
type experimentItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	EntityType    string `dynamodbav:"EntityType"`
	ExperimentID  string `dynamodbav:"ExperimentID"`
	UserID        string `dynamodbav:"UserID"`
	Title         string `dynamodbav:"Title"`
	Hypothesis    string `dynamodbav:"Hypothesis,omitempty"`
	Status        string `dynamodbav:"Status"`
	IdentityShift string `dynamodbav:"IdentityShift,omitempty"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
}

// ListRecent retrieves the newest experiments for a user, newest first
func (r *ExperimentRepository) ListRecent(ctx context.Context, userID string, limit int) ([]entities.Experiment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "EXPERIMENT#"},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Failed to query experiments",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to query experiments: %w", err)
	}

	experiments := make([]entities.Experiment, 0, len(result.Items))
	for _, raw := range result.Items {
		var item experimentItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experiment: %w", err)
		}
		experiments = append(experiments, entities.Experiment{
			ID:            item.ExperimentID,
			UserID:        item.UserID,
			Title:         item.Title,
			Hypothesis:    item.Hypothesis,
			Status:        entities.ExperimentStatus(item.Status),
			IdentityShift: item.IdentityShift,
		})
	}
	return experiments, nil
}
