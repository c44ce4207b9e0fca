package di

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"inward-backend/application/ports"
)

// InMemoryFindingCache provides an in-memory FindingCache for local
// development and tests. Freshness is evaluated on read against the
// caller's maxAge, the same exclusive boundary the DynamoDB cache uses.
type InMemoryFindingCache struct {
	mu    sync.RWMutex
	items map[string]ports.CachedFinding
	now   func() time.Time
}

// NewInMemoryFindingCache creates a new in-memory finding cache
func NewInMemoryFindingCache() *InMemoryFindingCache {
	return &InMemoryFindingCache{
		items: make(map[string]ports.CachedFinding),
		now:   time.Now,
	}
}

// WithClock overrides the cache's clock. Intended for tests.
func (c *InMemoryFindingCache) WithClock(now func() time.Time) *InMemoryFindingCache {
	c.now = now
	return c
}

// Get retrieves a fresh entry, nil when absent or expired
func (c *InMemoryFindingCache) Get(ctx context.Context, key ports.CacheKey, maxAge time.Duration) (*ports.CachedFinding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.items[key.String()]
	if !exists {
		return nil, nil
	}
	if c.now().Sub(entry.ComputedAt) >= maxAge {
		return nil, nil
	}

	copied := entry
	return &copied, nil
}

// Put stores or overwrites an entry
func (c *InMemoryFindingCache) Put(ctx context.Context, key ports.CacheKey, payload json.RawMessage, computedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key.String()] = ports.CachedFinding{
		Payload:    payload,
		ComputedAt: computedAt,
	}
	return nil
}

// Invalidate removes an entry if present
func (c *InMemoryFindingCache) Invalidate(ctx context.Context, key ports.CacheKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key.String())
	return nil
}
