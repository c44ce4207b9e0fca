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

// DismissPatternMirrorHandler records a calendar-day dismissal marker.
// The marker key carries today's UTC date, so it stops matching on its
// own when the date changes.
type DismissPatternMirrorHandler struct {
	cache     ports.FindingCache
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDismissPatternMirrorHandler creates a new dismiss handler
func NewDismissPatternMirrorHandler(
	cache ports.FindingCache,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DismissPatternMirrorHandler {
	return &DismissPatternMirrorHandler{
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *DismissPatternMirrorHandler) WithClock(now func() time.Time) *DismissPatternMirrorHandler {
	h.now = now
	return h
}

// Handle executes the dismiss command
func (h *DismissPatternMirrorHandler) Handle(ctx context.Context, cmd commands.DismissPatternMirrorCommand) error {
	// Validate command
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	now := h.now().UTC()
	date := now.Format("2006-01-02")

	key := ports.CacheKey{
		UserID:     cmd.UserID,
		Feature:    ports.FeatureMirrorDismissal,
		DateBucket: date,
	}
	if err := h.cache.Put(ctx, key, []byte(`{"dismissed":true}`), now); err != nil {
		return fmt.Errorf("failed to record dismissal: %w", err)
	}

	event := events.NewPatternMirrorDismissed(cmd.UserID, date, now)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish dismissal event",
			zap.String("userID", cmd.UserID),
			zap.Error(err),
		)
	}

	return nil
}
