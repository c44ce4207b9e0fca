package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/application/queries"
	"inward-backend/domain/rollup"
)

// GetActivityRollupHandler handles activity rollup queries
type GetActivityRollupHandler struct {
	actions ports.ActionRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewGetActivityRollupHandler creates a new activity rollup handler
func NewGetActivityRollupHandler(actions ports.ActionRepository, logger *zap.Logger) *GetActivityRollupHandler {
	return &GetActivityRollupHandler{
		actions: actions,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *GetActivityRollupHandler) WithClock(now func() time.Time) *GetActivityRollupHandler {
	h.now = now
	return h
}

// Handle executes the activity rollup query
func (h *GetActivityRollupHandler) Handle(ctx context.Context, query queries.GetActivityRollupQuery) (*queries.GetActivityRollupResult, error) {
	// Validate query
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	now := h.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(rollup.TrailingMonths - 1), 0)

	actions, err := h.actions.ListSince(ctx, query.UserID, since)
	if err != nil {
		h.logger.Error("action read failed, proceeding with empty input",
			zap.String("userID", query.UserID),
			zap.Error(err),
		)
		actions = nil
	}

	result := rollup.Build(actions, now)
	return &queries.GetActivityRollupResult{Months: result.Months}, nil
}
