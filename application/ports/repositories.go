package ports

import (
	"context"
	"time"

	"inward-backend/domain/core/entities"
	"inward-backend/domain/events"
)

// InsightRepository defines the read contract over the insight stream
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type InsightRepository interface {
	// ListRecent retrieves the newest insights for a user, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]entities.Insight, error)

	// ListTopByRelevance retrieves the highest-relevance insights for a user
	ListTopByRelevance(ctx context.Context, userID string, limit int) ([]entities.Insight, error)
}

// TopicRepository defines the read contract over topics
type TopicRepository interface {
	// ListAll retrieves every topic for a user
	ListAll(ctx context.Context, userID string) ([]entities.Topic, error)
}

// ActionRepository defines the read contract over the action log
type ActionRepository interface {
	// ListRecent retrieves the newest actions for a user, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]entities.Action, error)

	// ListSince retrieves all actions on or after the given time, newest first
	ListSince(ctx context.Context, userID string, since time.Time) ([]entities.Action, error)
}

// ExperimentRepository defines the read contract over experiments
type ExperimentRepository interface {
	// ListRecent retrieves the newest experiments for a user, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]entities.Experiment, error)
}

// IdentityRepository defines the read contract over the identity statement
type IdentityRepository interface {
	// Get retrieves the user's identity statement, nil when not yet defined
	Get(ctx context.Context, userID string) (*entities.IdentityStatement, error)
}

// ObservationRepository defines the read contract over observations
type ObservationRepository interface {
	// ListRecent retrieves the newest observations for a user, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]entities.Observation, error)

	// ListSummarized retrieves the newest observations carrying a summary
	ListSummarized(ctx context.Context, userID string, limit int) ([]entities.Observation, error)
}

// StateLogRepository defines the contract over emotional-state logs.
// MarkResonance is the only write the pipeline issues against source
// records.
type StateLogRepository interface {
	// ListSince retrieves all state logs on or after the given time, newest first
	ListSince(ctx context.Context, userID string, since time.Time) ([]entities.StateLog, error)

	// MarkResonance records the user's resonance judgement on one entry
	MarkResonance(ctx context.Context, userID, logID string, resonated bool) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
