package di

import (
	"go.uber.org/zap"

	"inward-backend/application/commands/bus"
	"inward-backend/application/ports"
	querybus "inward-backend/application/queries/bus"
	"inward-backend/infrastructure/config"
	"inward-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Tracer       *observability.Tracer
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	FindingCache ports.FindingCache
	Publisher    ports.EventPublisher
}
