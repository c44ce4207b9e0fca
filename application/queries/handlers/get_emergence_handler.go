package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inward-backend/application/ports"
	"inward-backend/application/queries"
	"inward-backend/domain/emergence"
	"inward-backend/pkg/observability"
)

// GetEmergenceHandler handles emergence queries. It reads through the
// finding cache, fetches a fresh snapshot in parallel when needed, runs
// the detector, and caches only positive findings so a "none" result is
// recomputed next time.
type GetEmergenceHandler struct {
	insights    ports.InsightRepository
	actions     ports.ActionRepository
	experiments ports.ExperimentRepository
	identity    ports.IdentityRepository
	topics      ports.TopicRepository
	cache       ports.FindingCache
	detector    *emergence.Detector
	tracer      *observability.Tracer
	logger      *zap.Logger
	now         func() time.Time
}

// NewGetEmergenceHandler creates a new emergence handler
func NewGetEmergenceHandler(
	insights ports.InsightRepository,
	actions ports.ActionRepository,
	experiments ports.ExperimentRepository,
	identity ports.IdentityRepository,
	topics ports.TopicRepository,
	cache ports.FindingCache,
	detector *emergence.Detector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *GetEmergenceHandler {
	return &GetEmergenceHandler{
		insights:    insights,
		actions:     actions,
		experiments: experiments,
		identity:    identity,
		topics:      topics,
		cache:       cache,
		detector:    detector,
		tracer:      tracer,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *GetEmergenceHandler) WithClock(now func() time.Time) *GetEmergenceHandler {
	h.now = now
	return h
}

// Handle executes the emergence query
func (h *GetEmergenceHandler) Handle(ctx context.Context, query queries.GetEmergenceQuery) (*queries.GetEmergenceResult, error) {
	// Validate query
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	key := ports.CacheKey{UserID: query.UserID, Feature: ports.FeatureEmergence}

	if query.Refresh {
		if err := h.cache.Invalidate(ctx, key); err != nil {
			h.logger.Warn("failed to invalidate emergence cache",
				zap.String("userID", query.UserID),
				zap.Error(err),
			)
		}
	} else if cached := h.readCache(ctx, key, query.UserID); cached != nil {
		return &queries.GetEmergenceResult{
			Status:    emergence.StatusFound,
			Finding:   cached,
			FromCache: true,
		}, nil
	}

	snap := h.fetchSnapshot(ctx, query.UserID)

	var detection emergence.Detection
	h.tracer.Capture(ctx, "emergence.detect", func(context.Context) error {
		detection = h.detector.Detect(snap)
		return nil
	})

	if detection.Status == emergence.StatusFound {
		h.writeCache(ctx, key, query.UserID, detection.Finding)
	}

	return &queries.GetEmergenceResult{
		Status:  detection.Status,
		Finding: detection.Finding,
	}, nil
}

// fetchSnapshot issues the five record-store reads in parallel. A
// failed read degrades to empty input rather than failing the run.
func (h *GetEmergenceHandler) fetchSnapshot(ctx context.Context, userID string) emergence.Snapshot {
	var snap emergence.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := h.insights.ListRecent(gctx, userID, emergence.MaxInsights)
		if err != nil {
			h.logReadFailure("insights", userID, err)
			return nil
		}
		snap.Insights = items
		return nil
	})
	g.Go(func() error {
		items, err := h.actions.ListRecent(gctx, userID, emergence.MaxActions)
		if err != nil {
			h.logReadFailure("actions", userID, err)
			return nil
		}
		snap.Actions = items
		return nil
	})
	g.Go(func() error {
		items, err := h.experiments.ListRecent(gctx, userID, emergence.MaxExperiments)
		if err != nil {
			h.logReadFailure("experiments", userID, err)
			return nil
		}
		snap.Experiments = items
		return nil
	})
	g.Go(func() error {
		stmt, err := h.identity.Get(gctx, userID)
		if err != nil {
			h.logReadFailure("identity", userID, err)
			return nil
		}
		snap.Identity = stmt
		return nil
	})
	g.Go(func() error {
		items, err := h.topics.ListAll(gctx, userID)
		if err != nil {
			h.logReadFailure("topics", userID, err)
			return nil
		}
		snap.Topics = items
		return nil
	})
	g.Wait()

	return snap
}

func (h *GetEmergenceHandler) readCache(ctx context.Context, key ports.CacheKey, userID string) *emergence.Finding {
	entry, err := h.cache.Get(ctx, key, ports.EmergenceTTL)
	if err != nil {
		h.logger.Warn("emergence cache read failed",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil
	}
	if entry == nil {
		return nil
	}

	var finding emergence.Finding
	if err := json.Unmarshal(entry.Payload, &finding); err != nil {
		h.logger.Warn("cached emergence payload is malformed, recomputing",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil
	}
	return &finding
}

func (h *GetEmergenceHandler) writeCache(ctx context.Context, key ports.CacheKey, userID string, finding *emergence.Finding) {
	payload, err := json.Marshal(finding)
	if err != nil {
		h.logger.Error("failed to marshal emergence finding",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return
	}
	if err := h.cache.Put(ctx, key, payload, h.now()); err != nil {
		h.logger.Warn("failed to cache emergence finding",
			zap.String("userID", userID),
			zap.Error(err),
		)
	}
}

func (h *GetEmergenceHandler) logReadFailure(store, userID string, err error) {
	h.logger.Error("record read failed, proceeding with empty input",
		zap.String("store", store),
		zap.String("userID", userID),
		zap.Error(err),
	)
}
