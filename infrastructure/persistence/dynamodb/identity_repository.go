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

// IdentityRepository implements ports.IdentityRepository using DynamoDB.
// The identity statement is a singleton per user under a fixed sort key.
type IdentityRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.IdentityRepository {
	return &IdentityRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// identityItem represents the DynamoDB item structure for an identity statement
type identityItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	EntityType      string `dynamodbav:"EntityType"`
	UserID          string `dynamodbav:"UserID"`
	SelfDescription string `dynamodbav:"SelfDescription"`
	CoreValues      string `dynamodbav:"CoreValues,omitempty"`
	WeeklyFocus     string `dynamodbav:"WeeklyFocus,omitempty"`
	LongHorizon     string `dynamodbav:"LongHorizon,omitempty"`
}

// Get retrieves the user's identity statement. Absence is a valid state
// and comes back as nil, not an error.
func (r *IdentityRepository) Get(ctx context.Context, userID string) (*entities.IdentityStatement, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			"SK": &types.AttributeValueMemberS{Value: "IDENTITY"},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		r.logger.Error("Failed to get identity statement",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("failed to get identity statement: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item identityItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity statement: %w", err)
	}

	return &entities.IdentityStatement{
		UserID:          item.UserID,
		SelfDescription: item.SelfDescription,
		CoreValues:      item.CoreValues,
		WeeklyFocus:     item.WeeklyFocus,
		LongHorizon:     item.LongHorizon,
	}, nil
}
