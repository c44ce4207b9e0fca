package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	"inward-backend/application/queries"
	"inward-backend/domain/core/entities"
	"inward-backend/domain/emergence"
	"inward-backend/domain/services"
)

func threadInsights() []entities.Insight {
	return []entities.Insight{
		{ID: "i1", UserID: "user-1", Title: "blocks beat willpower", TopicID: "t1"},
		{ID: "i2", UserID: "user-1", Title: "mornings are sacred", TopicID: "t1"},
		{ID: "i3", UserID: "user-1", Title: "meetings fragment focus", TopicID: "t1"},
	}
}

func newEmergenceFixture(clock func() time.Time) (*GetEmergenceHandler, *fakeCache, *fakeInsightRepo) {
	insights := &fakeInsightRepo{recent: threadInsights()}
	cache := newFakeCache(clock)
	detector := emergence.NewDetector(services.NewDefaultTextAnalyzer()).WithClock(clock)

	h := NewGetEmergenceHandler(
		insights,
		&fakeActionRepo{},
		&fakeExperimentRepo{},
		&fakeIdentityRepo{},
		&fakeTopicRepo{topics: []entities.Topic{{ID: "t1", Name: "deep work"}}},
		cache,
		detector,
		nil,
		zap.NewNop(),
	).WithClock(clock)

	return h, cache, insights
}

func TestGetEmergence_ComputesAndCaches(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, cache, _ := newEmergenceFixture(func() time.Time { return now })

	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, emergence.StatusFound, result.Status)
	assert.False(t, result.FromCache)
	require.NotNil(t, result.Finding)
	assert.Equal(t, emergence.KindThread, result.Finding.Kind)
	assert.Equal(t, 1, cache.puts)
}

func TestGetEmergence_ServesFreshCache(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, cache, insights := newEmergenceFixture(func() time.Time { return now })

	_, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	// A broken store on the second call proves the cache was served.
	insights.err = errStoreDown
	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	assert.Equal(t, emergence.StatusFound, result.Status)
	assert.Equal(t, 1, cache.puts)
}

func TestGetEmergence_ExpiredAtBoundaryRecomputes(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	h, cache, _ := newEmergenceFixture(clock)

	_, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	// Exactly TTL later the entry is expired, not still fresh.
	now = now.Add(ports.EmergenceTTL)
	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Equal(t, 2, cache.puts)
}

func TestGetEmergence_RefreshInvalidates(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, cache, _ := newEmergenceFixture(func() time.Time { return now })

	_, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1", Refresh: true})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Equal(t, 2, cache.puts)
}

func TestGetEmergence_NoneIsNotCached(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, cache, insights := newEmergenceFixture(func() time.Time { return now })

	// Three insights with no topic and no shared significant words.
	insights.recent = []entities.Insight{
		{ID: "i1", UserID: "user-1", Title: "aaaaaa"},
		{ID: "i2", UserID: "user-1", Title: "bbbbbb"},
		{ID: "i3", UserID: "user-1", Title: "cccccc"},
	}

	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, emergence.StatusNone, result.Status)
	assert.Equal(t, 0, cache.puts)
}

func TestGetEmergence_InsufficientData(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, _, insights := newEmergenceFixture(func() time.Time { return now })
	insights.recent = insights.recent[:1]

	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, emergence.StatusInsufficient, result.Status)
}

func TestGetEmergence_FailedReadDegradesToEmpty(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, _, insights := newEmergenceFixture(func() time.Time { return now })
	insights.err = errStoreDown

	// With insights unavailable the remaining records are below the
	// minimum, so the run reports insufficient data instead of failing.
	result, err := h.Handle(context.Background(), queries.GetEmergenceQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, emergence.StatusInsufficient, result.Status)
}

func TestGetEmergence_RequiresUserID(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h, _, _ := newEmergenceFixture(func() time.Time { return now })

	_, err := h.Handle(context.Background(), queries.GetEmergenceQuery{})
	assert.Error(t, err)
}
