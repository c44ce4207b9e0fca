package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/application/queries"
)

// spotlightPool is how many top-relevance insights the spotlight picks
// from.
const spotlightPool = 5

// GetSpotlightInsightHandler picks one of the user's most relevant
// insights at random for display variety. The randomness source is
// injected so the deterministic detection paths never depend on it.
type GetSpotlightInsightHandler struct {
	insights ports.InsightRepository
	topics   ports.TopicRepository

	// rand.Rand is not safe for concurrent use; mu serializes draws
	// across requests sharing this handler.
	mu  sync.Mutex
	rng *rand.Rand

	logger *zap.Logger
}

// NewGetSpotlightInsightHandler creates a new spotlight handler
func NewGetSpotlightInsightHandler(
	insights ports.InsightRepository,
	topics ports.TopicRepository,
	rng *rand.Rand,
	logger *zap.Logger,
) *GetSpotlightInsightHandler {
	return &GetSpotlightInsightHandler{
		insights: insights,
		topics:   topics,
		rng:      rng,
		logger:   logger,
	}
}

// Handle executes the spotlight query
func (h *GetSpotlightInsightHandler) Handle(ctx context.Context, query queries.GetSpotlightInsightQuery) (*queries.GetSpotlightInsightResult, error) {
	// Validate query
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	insights, err := h.insights.ListTopByRelevance(ctx, query.UserID, spotlightPool)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	if len(insights) == 0 {
		return &queries.GetSpotlightInsightResult{Found: false}, nil
	}

	h.mu.Lock()
	pick := insights[h.rng.Intn(len(insights))]
	h.mu.Unlock()

	result := &queries.GetSpotlightInsightResult{
		Found: true,
		ID:    pick.ID,
		Title: pick.Title,
		Body:  pick.Body,
	}

	if pick.HasTopic() {
		// Topic join is enrichment only; a failed lookup degrades to an
		// unnamed topic.
		topics, err := h.topics.ListAll(ctx, query.UserID)
		if err != nil {
			h.logger.Warn("topic lookup failed for spotlight",
				zap.String("userID", query.UserID),
				zap.Error(err),
			)
		} else {
			for _, t := range topics {
				if t.ID == pick.TopicID {
					result.TopicName = t.Name
					break
				}
			}
		}
	}

	return result, nil
}
