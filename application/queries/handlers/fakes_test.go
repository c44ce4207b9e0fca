package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inward-backend/application/ports"
	"inward-backend/domain/core/entities"
	"inward-backend/domain/events"
)

// In-memory fakes over the application ports. Each fake returns its
// configured slice and optional error; errors exercise the degrade
// paths.

type fakeInsightRepo struct {
	recent []entities.Insight
	top    []entities.Insight
	err    error
}

func (f *fakeInsightRepo) ListRecent(_ context.Context, _ string, limit int) ([]entities.Insight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return capSlice(f.recent, limit), nil
}

func (f *fakeInsightRepo) ListTopByRelevance(_ context.Context, _ string, limit int) ([]entities.Insight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return capSlice(f.top, limit), nil
}

type fakeActionRepo struct {
	actions []entities.Action
	err     error
}

func (f *fakeActionRepo) ListRecent(_ context.Context, _ string, limit int) ([]entities.Action, error) {
	if f.err != nil {
		return nil, f.err
	}
	return capSlice(f.actions, limit), nil
}

func (f *fakeActionRepo) ListSince(_ context.Context, _ string, since time.Time) ([]entities.Action, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entities.Action
	for _, a := range f.actions {
		if !a.OccurredAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeExperimentRepo struct {
	experiments []entities.Experiment
	err         error
}

func (f *fakeExperimentRepo) ListRecent(_ context.Context, _ string, limit int) ([]entities.Experiment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return capSlice(f.experiments, limit), nil
}

type fakeIdentityRepo struct {
	identity *entities.IdentityStatement
	err      error
}

func (f *fakeIdentityRepo) Get(_ context.Context, _ string) (*entities.IdentityStatement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeObservationRepo struct {
	observations []entities.Observation
	err          error
}

func (f *fakeObservationRepo) ListRecent(_ context.Context, _ string, limit int) ([]entities.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return capSlice(f.observations, limit), nil
}

func (f *fakeObservationRepo) ListSummarized(_ context.Context, _ string, limit int) ([]entities.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entities.Observation
	for _, o := range f.observations {
		if o.HasSummary() {
			out = append(out, o)
		}
	}
	return capSlice(out, limit), nil
}

type fakeTopicRepo struct {
	topics []entities.Topic
	err    error
}

func (f *fakeTopicRepo) ListAll(_ context.Context, _ string) ([]entities.Topic, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.topics, nil
}

type fakeStateLogRepo struct {
	logs   []entities.StateLog
	err    error
	marked map[string]bool
}

func (f *fakeStateLogRepo) ListSince(_ context.Context, _ string, since time.Time) ([]entities.StateLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.logs, nil
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

// fakeCache stores entries keyed by CacheKey and applies the exclusive
// freshness boundary against an injectable clock.
type fakeCache struct {
	entries map[string]ports.CachedFinding
	now     func() time.Time
	getErr  error
	puts    int
}

func newFakeCache(now func() time.Time) *fakeCache {
	return &fakeCache{
		entries: make(map[string]ports.CachedFinding),
		now:     now,
	}
}

func (f *fakeCache) Get(_ context.Context, key ports.CacheKey, maxAge time.Duration) (*ports.CachedFinding, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry, ok := f.entries[key.String()]
	if !ok {
		return nil, nil
	}
	if f.now().Sub(entry.ComputedAt) >= maxAge {
		return nil, nil
	}
	return &entry, nil
}

func (f *fakeCache) Put(_ context.Context, key ports.CacheKey, payload json.RawMessage, computedAt time.Time) error {
	f.puts++
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
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, batch...)
	return nil
}

// fakeModelClient returns a fixed payload or error.
type fakeModelClient struct {
	payload json.RawMessage
	err     error
	calls   int
	prompt  string
}

func (f *fakeModelClient) GenerateStructured(_ context.Context, req ports.StructuredRequest) (json.RawMessage, error) {
	f.calls++
	f.prompt = req.Prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func capSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var errStoreDown = errors.New("store unavailable")
