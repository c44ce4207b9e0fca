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
	"inward-backend/domain/events"
	"inward-backend/domain/services"
	apperrors "inward-backend/pkg/errors"
)

const synthesisSystemInstruction = "You are a careful, grounded synthesist. " +
	"You are given one person's private notes: their identity statement, insights, " +
	"documents, experiments, actions and observations. Read all of it and answer " +
	"strictly through the provided schema. Be specific to this material, never generic."

// fallbackResult is the canned payload served when the model call fails
// for any reason other than rate limiting or quota exhaustion.
func fallbackResult() *queries.SynthesizeResult {
	return &queries.SynthesizeResult{
		Synthesis: "Your notes hold more than any single reading can surface. " +
			"A synthesis could not be generated right now; the raw material is all still here.",
		CoreThemes:        []string{"reflection", "continuity", "attention"},
		EmergingDirection: "Keep capturing; direction becomes visible in the accumulation.",
		HiddenConnections: []string{
			"Entries written far apart often circle the same question.",
			"What you log as action and what you log as insight tend to converge.",
		},
		Distillation: "The record you are keeping is already the work.",
		Fallback:     true,
	}
}

// SynthesizeHandler orchestrates one synthesis run: seven parallel
// record reads, one structured model call, fallback on failure.
type SynthesizeHandler struct {
	insights     ports.InsightRepository
	actions      ports.ActionRepository
	experiments  ports.ExperimentRepository
	identity     ports.IdentityRepository
	observations ports.ObservationRepository
	topics       ports.TopicRepository
	model        ports.ModelClient
	publisher    ports.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewSynthesizeHandler creates a new synthesize handler
func NewSynthesizeHandler(
	insights ports.InsightRepository,
	actions ports.ActionRepository,
	experiments ports.ExperimentRepository,
	identity ports.IdentityRepository,
	observations ports.ObservationRepository,
	topics ports.TopicRepository,
	model ports.ModelClient,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *SynthesizeHandler {
	return &SynthesizeHandler{
		insights:     insights,
		actions:      actions,
		experiments:  experiments,
		identity:     identity,
		observations: observations,
		topics:       topics,
		model:        model,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *SynthesizeHandler) WithClock(now func() time.Time) *SynthesizeHandler {
	h.now = now
	return h
}

// Handle executes one synthesis run. Rate-limit and quota failures from
// the model backend are returned as typed errors; every other failure
// is masked by the canned fallback.
func (h *SynthesizeHandler) Handle(ctx context.Context, query queries.SynthesizeQuery) (*queries.SynthesizeResult, error) {
	// Validate query
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	input := h.fetchInput(ctx, query.UserID)
	stats := queries.InputStats{
		Insights:     len(input.Insights),
		Documents:    len(input.Documents),
		Experiments:  len(input.Experiments),
		Actions:      len(input.Actions),
		Observations: len(input.Observations),
		Topics:       len(input.Topics),
	}

	payload, err := h.model.GenerateStructured(ctx, ports.StructuredRequest{
		SystemInstruction: synthesisSystemInstruction,
		Prompt:            services.BuildSynthesisContext(input),
		Schema:            services.SynthesisResponseSchema(),
	})
	if err != nil {
		if apperrors.IsRateLimit(err) || apperrors.IsQuota(err) {
			return nil, err
		}
		h.logger.Warn("model call failed, serving fallback",
			zap.String("userID", query.UserID),
			zap.Error(err),
		)
		return h.finish(ctx, query.UserID, fallbackResult(), stats), nil
	}

	result, err := h.decode(payload)
	if err != nil {
		h.logger.Warn("model response failed schema validation, serving fallback",
			zap.String("userID", query.UserID),
			zap.Error(err),
		)
		return h.finish(ctx, query.UserID, fallbackResult(), stats), nil
	}

	return h.finish(ctx, query.UserID, result, stats), nil
}

// fetchInput issues the seven record-store reads in parallel. A failed
// read degrades to empty input rather than failing the run.
func (h *SynthesizeHandler) fetchInput(ctx context.Context, userID string) services.SynthesisInput {
	var input services.SynthesisInput

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stmt, err := h.identity.Get(gctx, userID)
		if err != nil {
			h.logReadFailure("identity", userID, err)
			return nil
		}
		input.Identity = stmt
		return nil
	})
	g.Go(func() error {
		items, err := h.topics.ListAll(gctx, userID)
		if err != nil {
			h.logReadFailure("topics", userID, err)
			return nil
		}
		input.Topics = items
		return nil
	})
	g.Go(func() error {
		items, err := h.insights.ListRecent(gctx, userID, services.SynthesisMaxInsights)
		if err != nil {
			h.logReadFailure("insights", userID, err)
			return nil
		}
		input.Insights = items
		return nil
	})
	g.Go(func() error {
		items, err := h.observations.ListSummarized(gctx, userID, services.SynthesisMaxDocuments)
		if err != nil {
			h.logReadFailure("documents", userID, err)
			return nil
		}
		input.Documents = items
		return nil
	})
	g.Go(func() error {
		items, err := h.experiments.ListRecent(gctx, userID, services.SynthesisMaxExperiments)
		if err != nil {
			h.logReadFailure("experiments", userID, err)
			return nil
		}
		input.Experiments = items
		return nil
	})
	g.Go(func() error {
		items, err := h.actions.ListRecent(gctx, userID, services.SynthesisMaxActions)
		if err != nil {
			h.logReadFailure("actions", userID, err)
			return nil
		}
		input.Actions = items
		return nil
	})
	g.Go(func() error {
		items, err := h.observations.ListRecent(gctx, userID, services.SynthesisMaxObservations)
		if err != nil {
			h.logReadFailure("observations", userID, err)
			return nil
		}
		input.Observations = items
		return nil
	})
	g.Wait()

	return input
}

// decode validates the structured payload against the five-field
// contract.
func (h *SynthesizeHandler) decode(payload json.RawMessage) (*queries.SynthesizeResult, error) {
	var result queries.SynthesizeResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal structured payload: %w", err)
	}
	if result.Synthesis == "" || result.EmergingDirection == "" || result.Distillation == "" {
		return nil, fmt.Errorf("structured payload is missing required fields")
	}
	if len(result.CoreThemes) < 3 || len(result.CoreThemes) > 5 {
		return nil, fmt.Errorf("core_themes count %d outside 3-5", len(result.CoreThemes))
	}
	if len(result.HiddenConnections) < 2 || len(result.HiddenConnections) > 4 {
		return nil, fmt.Errorf("hidden_connections count %d outside 2-4", len(result.HiddenConnections))
	}
	return &result, nil
}

// finish attaches input stats and publishes the completion event as a
// fire-and-forget side effect.
func (h *SynthesizeHandler) finish(ctx context.Context, userID string, result *queries.SynthesizeResult, stats queries.InputStats) *queries.SynthesizeResult {
	result.InputStats = stats

	event := events.NewSynthesisCompleted(userID, result.Fallback, h.now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish synthesis event",
			zap.String("userID", userID),
			zap.Error(err),
		)
	}

	return result
}

func (h *SynthesizeHandler) logReadFailure(store, userID string, err error) {
	h.logger.Error("record read failed, proceeding with empty input",
		zap.String("store", store),
		zap.String("userID", userID),
		zap.Error(err),
	)
}
