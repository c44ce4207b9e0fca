package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inward-backend/application/commands"
	"inward-backend/application/ports"
	"inward-backend/domain/core/entities"
	"inward-backend/domain/events"
)

type fakeStateLogRepo struct {
	marked map[string]bool
	err    error
}

func (f *fakeStateLogRepo) ListSince(_ context.Context, _ string, _ time.Time) ([]entities.StateLog, error) {
	return nil, nil
}

func (f *fakeStateLogRepo) MarkResonance(_ context.Context, _, logID string, resonated bool) error {
	if f.err != nil {
		return f.err
	}
	if f.marked == nil {
		f.marked = make(map[string]bool)
	}
	f.marked[logID] = resonated
	return nil
}

type fakeCache struct {
	entries map[string]ports.CachedFinding
	err     error
}

func (f *fakeCache) Get(_ context.Context, key ports.CacheKey, _ time.Duration) (*ports.CachedFinding, error) {
	entry, ok := f.entries[key.String()]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (f *fakeCache) Put(_ context.Context, key ports.CacheKey, payload json.RawMessage, computedAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.entries == nil {
		f.entries = make(map[string]ports.CachedFinding)
	}
	f.entries[key.String()] = ports.CachedFinding{Payload: payload, ComputedAt: computedAt}
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, key ports.CacheKey) error {
	delete(f.entries, key.String())
	return nil
}

type fakePublisher struct {
	published []events.DomainEvent
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, event events.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakePublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	f.published = append(f.published, batch...)
	return nil
}

func TestMarkResonance(t *testing.T) {
	repo := &fakeStateLogRepo{}
	publisher := &fakePublisher{}
	clock := func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }

	h := NewMarkResonanceHandler(repo, publisher, zap.NewNop()).WithClock(clock)

	err := h.Handle(context.Background(), commands.MarkResonanceCommand{
		UserID:     "user-1",
		StateLogID: "s1",
		Resonated:  true,
	})
	require.NoError(t, err)

	assert.True(t, repo.marked["s1"])
	require.Len(t, publisher.published, 1)
	marked, ok := publisher.published[0].(events.ResonanceMarked)
	require.True(t, ok)
	assert.Equal(t, "s1", marked.StateLogID)
	assert.True(t, marked.Resonated)
}

func TestMarkResonance_RepositoryFailurePropagates(t *testing.T) {
	repo := &fakeStateLogRepo{err: errors.New("write failed")}
	publisher := &fakePublisher{}

	h := NewMarkResonanceHandler(repo, publisher, zap.NewNop())

	err := h.Handle(context.Background(), commands.MarkResonanceCommand{
		UserID:     "user-1",
		StateLogID: "s1",
		Resonated:  false,
	})
	require.Error(t, err)
	assert.Empty(t, publisher.published)
}

func TestMarkResonance_PublishFailureIsSwallowed(t *testing.T) {
	repo := &fakeStateLogRepo{}
	publisher := &fakePublisher{err: errors.New("bus down")}

	h := NewMarkResonanceHandler(repo, publisher, zap.NewNop())

	err := h.Handle(context.Background(), commands.MarkResonanceCommand{
		UserID:     "user-1",
		StateLogID: "s1",
		Resonated:  true,
	})
	assert.NoError(t, err)
	assert.True(t, repo.marked["s1"])
}

func TestMarkResonance_Validation(t *testing.T) {
	h := NewMarkResonanceHandler(&fakeStateLogRepo{}, &fakePublisher{}, zap.NewNop())

	err := h.Handle(context.Background(), commands.MarkResonanceCommand{UserID: "user-1"})
	assert.Error(t, err)
}

func TestDismissPatternMirror(t *testing.T) {
	cache := &fakeCache{}
	publisher := &fakePublisher{}
	clock := func() time.Time { return time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC) }

	h := NewDismissPatternMirrorHandler(cache, publisher, zap.NewNop()).WithClock(clock)

	err := h.Handle(context.Background(), commands.DismissPatternMirrorCommand{UserID: "user-1"})
	require.NoError(t, err)

	key := ports.CacheKey{UserID: "user-1", Feature: ports.FeatureMirrorDismissal, DateBucket: "2026-03-14"}
	_, ok := cache.entries[key.String()]
	assert.True(t, ok)

	require.Len(t, publisher.published, 1)
	dismissed, isDismissed := publisher.published[0].(events.PatternMirrorDismissed)
	require.True(t, isDismissed)
	assert.Equal(t, "2026-03-14", dismissed.Date)
}

func TestDismissPatternMirror_CacheFailurePropagates(t *testing.T) {
	cache := &fakeCache{err: errors.New("cache down")}
	h := NewDismissPatternMirrorHandler(cache, &fakePublisher{}, zap.NewNop())

	err := h.Handle(context.Background(), commands.DismissPatternMirrorCommand{UserID: "user-1"})
	assert.Error(t, err)
}
