package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/application/queries"
	"inward-backend/domain/patterns"
)

// GetPatternMirrorHandler handles pattern mirror queries. A dismissal
// recorded for today's UTC date suppresses the mirror regardless of the
// underlying logs.
type GetPatternMirrorHandler struct {
	stateLogs ports.StateLogRepository
	cache     ports.FindingCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewGetPatternMirrorHandler creates a new pattern mirror handler
func NewGetPatternMirrorHandler(
	stateLogs ports.StateLogRepository,
	cache ports.FindingCache,
	logger *zap.Logger,
) *GetPatternMirrorHandler {
	return &GetPatternMirrorHandler{
		stateLogs: stateLogs,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *GetPatternMirrorHandler) WithClock(now func() time.Time) *GetPatternMirrorHandler {
	h.now = now
	return h
}

// Handle executes the pattern mirror query
func (h *GetPatternMirrorHandler) Handle(ctx context.Context, query queries.GetPatternMirrorQuery) (*queries.GetPatternMirrorResult, error) {
	// Validate query
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	now := h.now().UTC()

	if h.dismissedToday(ctx, query.UserID, now) {
		return &queries.GetPatternMirrorResult{Dismissed: true, Patterns: []patterns.StatePattern{}}, nil
	}

	since := now.AddDate(0, 0, -patterns.WindowDays)
	logs, err := h.stateLogs.ListSince(ctx, query.UserID, since)
	if err != nil {
		h.logger.Error("state log read failed, proceeding with empty input",
			zap.String("userID", query.UserID),
			zap.Error(err),
		)
		logs = nil
	}

	mirror := patterns.Reflect(logs)
	result := &queries.GetPatternMirrorResult{Patterns: mirror.Patterns}
	if result.Patterns == nil {
		result.Patterns = []patterns.StatePattern{}
	}
	return result, nil
}

// dismissedToday checks the calendar-day dismissal marker. The marker
// has no duration TTL; it simply stops matching when the date changes.
func (h *GetPatternMirrorHandler) dismissedToday(ctx context.Context, userID string, now time.Time) bool {
	key := ports.CacheKey{
		UserID:     userID,
		Feature:    ports.FeatureMirrorDismissal,
		DateBucket: now.Format("2006-01-02"),
	}

	entry, err := h.cache.Get(ctx, key, 24*time.Hour)
	if err != nil {
		h.logger.Warn("dismissal lookup failed, showing mirror",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return false
	}
	return entry != nil
}
