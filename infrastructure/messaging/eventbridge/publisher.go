package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/domain/events"
)

// EventSource identifies this application on the bus.
const EventSource = "inward.backend"

// Publisher implements ports.EventPublisher using EventBridge. Events
// are side effects of already-committed work, so publish failures are
// reported to the caller but never roll anything back.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	entry, err := p.toEntry(event)
	if err != nil {
		return err
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.GetEventType(), err)
	}
	if output.FailedEntryCount > 0 {
		return fmt.Errorf("event bus rejected event %s", event.GetEventType())
	}

	p.logger.Debug("event published",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
	)
	return nil
}

// PublishBatch sends multiple events in one PutEvents call
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		entry, err := p.toEntry(event)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to publish event batch: %w", err)
	}
	if output.FailedEntryCount > 0 {
		return fmt.Errorf("event bus rejected %d of %d events", output.FailedEntryCount, len(entries))
	}
	return nil
}

func (p *Publisher) toEntry(event events.DomainEvent) (types.PutEventsRequestEntry, error) {
	detail, err := json.Marshal(event)
	if err != nil {
		return types.PutEventsRequestEntry{}, fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
	}

	return types.PutEventsRequestEntry{
		Source:       aws.String(EventSource),
		DetailType:   aws.String(event.GetEventType()),
		Detail:       aws.String(string(detail)),
		EventBusName: aws.String(p.eventBusName),
	}, nil
}
