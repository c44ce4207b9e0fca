package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inward-backend/application/queries"
	"inward-backend/domain/core/entities"
	"inward-backend/domain/events"
	apperrors "inward-backend/pkg/errors"
)

var validModelPayload = json.RawMessage(`{
	"synthesis": "Two paragraphs of grounded synthesis.",
	"core_themes": ["focus", "recovery", "craft"],
	"emerging_direction": "Toward fewer, deeper commitments.",
	"hidden_connections": ["Sleep entries precede insight bursts.", "Action gaps track travel."],
	"distillation": "Depth over spread."
}`)

func newSynthesizeFixture(model *fakeModelClient) (*SynthesizeHandler, *fakePublisher) {
	publisher := &fakePublisher{}
	clock := func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	h := NewSynthesizeHandler(
		&fakeInsightRepo{recent: []entities.Insight{{ID: "i1", Title: "title", Body: "body", TopicID: "t1"}}},
		&fakeActionRepo{actions: []entities.Action{{ID: "a1", Text: "ran", Pillar: entities.PillarBody}}},
		&fakeExperimentRepo{experiments: []entities.Experiment{{ID: "e1", Title: "exp", Status: entities.ExperimentActive}}},
		&fakeIdentityRepo{identity: &entities.IdentityStatement{UserID: "user-1", SelfDescription: "a builder"}},
		&fakeObservationRepo{observations: []entities.Observation{
			{ID: "o1", Text: "noted", Kind: entities.ObservationFreewrite},
			{ID: "o2", Text: "noted too", Kind: entities.ObservationVoice, Summary: "a summary"},
		}},
		&fakeTopicRepo{topics: []entities.Topic{{ID: "t1", Name: "making"}}},
		model,
		publisher,
		zap.NewNop(),
	).WithClock(clock)

	return h, publisher
}

func TestSynthesize_Success(t *testing.T) {
	model := &fakeModelClient{payload: validModelPayload}
	h, publisher := newSynthesizeFixture(model)

	result, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, "Depth over spread.", result.Distillation)
	assert.Len(t, result.CoreThemes, 3)
	assert.Equal(t, 1, model.calls)

	// Input stats reflect what was actually fetched.
	assert.Equal(t, 1, result.InputStats.Insights)
	assert.Equal(t, 1, result.InputStats.Documents)
	assert.Equal(t, 2, result.InputStats.Observations)
	assert.Equal(t, 1, result.InputStats.Topics)

	require.Len(t, publisher.published, 1)
	completed, ok := publisher.published[0].(events.SynthesisCompleted)
	require.True(t, ok)
	assert.False(t, completed.Fallback)
}

func TestSynthesize_ContextCarriesLabeledSections(t *testing.T) {
	model := &fakeModelClient{payload: validModelPayload}
	h, _ := newSynthesizeFixture(model)

	_, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
	require.NoError(t, err)

	for _, section := range []string{"## IDENTITY", "## VALUES", "## TOPICS", "## INSIGHTS", "## DOCUMENTS", "## EXPERIMENTS", "## ACTIONS", "## OBSERVATIONS"} {
		assert.Contains(t, model.prompt, section)
	}
	assert.Contains(t, model.prompt, "a builder")
	assert.Contains(t, model.prompt, "[topic: making]")
}

func TestSynthesize_GenericFailureServesFallback(t *testing.T) {
	model := &fakeModelClient{err: errStoreDown}
	h, publisher := newSynthesizeFixture(model)

	result, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.NotEmpty(t, result.Synthesis)
	assert.Len(t, result.CoreThemes, 3)
	assert.NotEmpty(t, result.Distillation)
	assert.Equal(t, 1, result.InputStats.Insights)

	require.Len(t, publisher.published, 1)
	completed := publisher.published[0].(events.SynthesisCompleted)
	assert.True(t, completed.Fallback)
}

func TestSynthesize_RateLimitSurfacedNotMasked(t *testing.T) {
	model := &fakeModelClient{err: apperrors.NewModelRateLimitError("gemini")}
	h, publisher := newSynthesizeFixture(model)

	result, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsRateLimit(err))
	assert.Empty(t, publisher.published)
}

func TestSynthesize_QuotaSurfacedNotMasked(t *testing.T) {
	model := &fakeModelClient{err: apperrors.NewQuotaError("gemini")}
	h, _ := newSynthesizeFixture(model)

	_, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsQuota(err))
}

func TestSynthesize_MalformedPayloadServesFallback(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "not json at all"},
		{"missing fields", `{"synthesis": "only this"}`},
		{"too few themes", `{"synthesis":"s","core_themes":["one"],"emerging_direction":"d","hidden_connections":["a","b"],"distillation":"x"}`},
		{"too many connections", `{"synthesis":"s","core_themes":["a","b","c"],"emerging_direction":"d","hidden_connections":["1","2","3","4","5"],"distillation":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModelClient{payload: json.RawMessage(tt.payload)}
			h, _ := newSynthesizeFixture(model)

			result, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
			require.NoError(t, err)
			assert.True(t, result.Fallback)
		})
	}
}

func TestSynthesize_FailedReadsDegradeToEmptySections(t *testing.T) {
	model := &fakeModelClient{payload: validModelPayload}
	publisher := &fakePublisher{}

	h := NewSynthesizeHandler(
		&fakeInsightRepo{err: errStoreDown},
		&fakeActionRepo{err: errStoreDown},
		&fakeExperimentRepo{err: errStoreDown},
		&fakeIdentityRepo{err: errStoreDown},
		&fakeObservationRepo{err: errStoreDown},
		&fakeTopicRepo{err: errStoreDown},
		model,
		publisher,
		zap.NewNop(),
	)

	result, err := h.Handle(context.Background(), queries.SynthesizeQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, queries.InputStats{}, result.InputStats)
	assert.Contains(t, model.prompt, "(not yet defined)")
}
