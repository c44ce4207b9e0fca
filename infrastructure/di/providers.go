package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"inward-backend/application/commands"
	"inward-backend/application/commands/bus"
	commands_handlers "inward-backend/application/commands/handlers"
	"inward-backend/application/ports"
	"inward-backend/application/queries"
	querybus "inward-backend/application/queries/bus"
	queries_handlers "inward-backend/application/queries/handlers"
	"inward-backend/domain/emergence"
	"inward-backend/domain/services"
	"inward-backend/infrastructure/ai"
	"inward-backend/infrastructure/config"
	"inward-backend/infrastructure/messaging/eventbridge"
	"inward-backend/infrastructure/persistence/dynamodb"
	"inward-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideTracer creates a tracer instance
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("inward")
}

// ProvideInsightRepository creates an insight repository
func ProvideInsightRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InsightRepository {
	return dynamodb.NewInsightRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideTopicRepository creates a topic repository
func ProvideTopicRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TopicRepository {
	return dynamodb.NewTopicRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideActionRepository creates an action repository
func ProvideActionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ActionRepository {
	return dynamodb.NewActionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideExperimentRepository creates an experiment repository
func ProvideExperimentRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ExperimentRepository {
	return dynamodb.NewExperimentRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideIdentityRepository creates an identity repository
func ProvideIdentityRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.IdentityRepository {
	return dynamodb.NewIdentityRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideObservationRepository creates an observation repository
func ProvideObservationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ObservationRepository {
	return dynamodb.NewObservationRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideStateLogRepository creates a state log repository
func ProvideStateLogRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.StateLogRepository {
	return dynamodb.NewStateLogRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates an EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideFindingCache creates the finding cache. Production uses the
// DynamoDB-backed cache so entries survive Lambda recycling; everything
// else runs in memory.
func ProvideFindingCache(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.FindingCache {
	if cfg.Environment == "production" {
		return dynamodb.NewFindingCache(client, cfg.DynamoDBTable, logger)
	}
	return NewInMemoryFindingCache()
}

// ProvideTextAnalyzer creates the text analyzer
func ProvideTextAnalyzer() services.TextAnalyzer {
	return services.NewDefaultTextAnalyzer()
}

// ProvideDetector creates the emergence detector
func ProvideDetector(analyzer services.TextAnalyzer) *emergence.Detector {
	return emergence.NewDetector(analyzer)
}

// ProvideModelClient creates the Gemini model client
func ProvideModelClient(cfg *config.Config, tracer *observability.Tracer, logger *zap.Logger) ports.ModelClient {
	return ai.NewGeminiClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey, tracer, logger)
}

// ProvideRand creates the random source used for spotlight picks
func ProvideRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	stateLogs ports.StateLogRepository,
	cache ports.FindingCache,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	markResonanceHandler := commands_handlers.NewMarkResonanceHandler(stateLogs, publisher, logger)
	commandBus.Register(commands.MarkResonanceCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			markCmd, ok := cmd.(commands.MarkResonanceCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return markResonanceHandler.Handle(ctx, markCmd)
		},
	})

	dismissHandler := commands_handlers.NewDismissPatternMirrorHandler(cache, publisher, logger)
	commandBus.Register(commands.DismissPatternMirrorCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			dismissCmd, ok := cmd.(commands.DismissPatternMirrorCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return dismissHandler.Handle(ctx, dismissCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	insights ports.InsightRepository,
	topics ports.TopicRepository,
	actions ports.ActionRepository,
	experiments ports.ExperimentRepository,
	identity ports.IdentityRepository,
	observations ports.ObservationRepository,
	stateLogs ports.StateLogRepository,
	cache ports.FindingCache,
	detector *emergence.Detector,
	model ports.ModelClient,
	publisher ports.EventPublisher,
	tracer *observability.Tracer,
	rng *rand.Rand,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	emergenceHandler := queries_handlers.NewGetEmergenceHandler(
		insights, actions, experiments, identity, topics, cache, detector, tracer, logger,
	)
	queryBus.Register(queries.GetEmergenceQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetEmergenceQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return emergenceHandler.Handle(ctx, getQuery)
		},
	})

	mirrorHandler := queries_handlers.NewGetPatternMirrorHandler(stateLogs, cache, logger)
	queryBus.Register(queries.GetPatternMirrorQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetPatternMirrorQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return mirrorHandler.Handle(ctx, getQuery)
		},
	})

	rollupHandler := queries_handlers.NewGetActivityRollupHandler(actions, logger)
	queryBus.Register(queries.GetActivityRollupQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetActivityRollupQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return rollupHandler.Handle(ctx, getQuery)
		},
	})

	spotlightHandler := queries_handlers.NewGetSpotlightInsightHandler(insights, topics, rng, logger)
	queryBus.Register(queries.GetSpotlightInsightQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetSpotlightInsightQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return spotlightHandler.Handle(ctx, getQuery)
		},
	})

	synthesizeHandler := queries_handlers.NewSynthesizeHandler(
		insights, actions, experiments, identity, observations, topics, model, publisher, logger,
	)
	queryBus.Register(queries.SynthesizeQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			synthQuery, ok := query.(queries.SynthesizeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return synthesizeHandler.Handle(ctx, synthQuery)
		},
	})

	return queryBus
}
