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
)

func TestGetPatternMirror_ReturnsRecurringStates(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	yes := true
	logs := &fakeStateLogRepo{logs: []entities.StateLog{
		{ID: "s1", State: "anxious", Resonated: &yes},
		{ID: "s2", State: "anxious"},
		{ID: "s3", State: "calm"},
	}}

	h := NewGetPatternMirrorHandler(logs, newFakeCache(clock), zap.NewNop()).WithClock(clock)

	result, err := h.Handle(context.Background(), queries.GetPatternMirrorQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, result.Dismissed)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, "anxious", result.Patterns[0].State)
	assert.Equal(t, 50, result.Patterns[0].ResonanceRate)
}

func TestGetPatternMirror_DismissedTodaySuppresses(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cache := newFakeCache(clock)
	key := ports.CacheKey{UserID: "user-1", Feature: ports.FeatureMirrorDismissal, DateBucket: "2026-03-14"}
	require.NoError(t, cache.Put(context.Background(), key, []byte(`{"dismissed":true}`), now))

	logs := &fakeStateLogRepo{logs: []entities.StateLog{
		{ID: "s1", State: "anxious"},
		{ID: "s2", State: "anxious"},
	}}

	h := NewGetPatternMirrorHandler(logs, cache, zap.NewNop()).WithClock(clock)

	result, err := h.Handle(context.Background(), queries.GetPatternMirrorQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.True(t, result.Dismissed)
	assert.Empty(t, result.Patterns)
}

func TestGetPatternMirror_YesterdaysDismissalExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cache := newFakeCache(clock)
	key := ports.CacheKey{UserID: "user-1", Feature: ports.FeatureMirrorDismissal, DateBucket: "2026-03-13"}
	require.NoError(t, cache.Put(context.Background(), key, []byte(`{"dismissed":true}`), now.AddDate(0, 0, -1)))

	logs := &fakeStateLogRepo{logs: []entities.StateLog{
		{ID: "s1", State: "anxious"},
		{ID: "s2", State: "anxious"},
	}}

	h := NewGetPatternMirrorHandler(logs, cache, zap.NewNop()).WithClock(clock)

	result, err := h.Handle(context.Background(), queries.GetPatternMirrorQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.False(t, result.Dismissed)
	assert.Len(t, result.Patterns, 1)
}

func TestGetPatternMirror_ReadFailureYieldsEmpty(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	logs := &fakeStateLogRepo{err: errStoreDown}
	h := NewGetPatternMirrorHandler(logs, newFakeCache(clock), zap.NewNop()).WithClock(clock)

	result, err := h.Handle(context.Background(), queries.GetPatternMirrorQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, result.Patterns)
}
