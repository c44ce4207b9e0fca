package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inward-backend/application/commands"
	"inward-backend/application/ports"
	"inward-backend/domain/events"
)

// MarkResonanceHandler handles resonance marking. The repository write
// must succeed; the event publish is fire-and-forget.
type MarkResonanceHandler struct {
	stateLogs ports.StateLogRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewMarkResonanceHandler creates a new mark resonance handler
func NewMarkResonanceHandler(
	stateLogs ports.StateLogRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *MarkResonanceHandler {
	return &MarkResonanceHandler{
		stateLogs: stateLogs,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *MarkResonanceHandler) WithClock(now func() time.Time) *MarkResonanceHandler {
	h.now = now
	return h
}

// Handle executes the mark resonance command
func (h *MarkResonanceHandler) Handle(ctx context.Context, cmd commands.MarkResonanceCommand) error {
	// Validate command
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	if err := h.stateLogs.MarkResonance(ctx, cmd.UserID, cmd.StateLogID, cmd.Resonated); err != nil {
		return fmt.Errorf("failed to mark resonance: %w", err)
	}

	event := events.NewResonanceMarked(cmd.StateLogID, cmd.UserID, cmd.Resonated, h.now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish resonance event",
			zap.String("userID", cmd.UserID),
			zap.String("stateLogID", cmd.StateLogID),
			zap.Error(err),
		)
	}

	return nil
}
