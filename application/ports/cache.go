package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Feature identifies a cacheable computation. Keys are scoped per user
// per feature so features never collide.
type Feature string

const (
	FeatureEmergence       Feature = "emergence"
	FeatureMirrorDismissal Feature = "mirror_dismissal"
)

// EmergenceTTL is how long a cached emergence finding stays fresh.
const EmergenceTTL = 8 * time.Hour

// CacheKey addresses one cache entry. DateBucket is empty for
// TTL-governed entries and a UTC yyyy-mm-dd date for calendar-day
// entries such as mirror dismissals.
type CacheKey struct {
	UserID     string
	Feature    Feature
	DateBucket string
}

// String renders the storage key.
func (k CacheKey) String() string {
	if k.DateBucket == "" {
		return fmt.Sprintf("%s#%s", k.Feature, k.UserID)
	}
	return fmt.Sprintf("%s#%s#%s", k.Feature, k.UserID, k.DateBucket)
}

// CachedFinding is a stored computation result with its timestamp.
type CachedFinding struct {
	Payload    json.RawMessage `json:"payload"`
	ComputedAt time.Time       `json:"computed_at"`
}

// FindingCache defines the keyed cache the pipeline reads then writes.
// An entry whose age has reached maxAge is reported as absent; the
// boundary is exclusive of fresh, so age == maxAge means expired.
type FindingCache interface {
	// Get retrieves a fresh entry, nil when absent or expired
	Get(ctx context.Context, key CacheKey, maxAge time.Duration) (*CachedFinding, error)

	// Put stores or overwrites an entry
	Put(ctx context.Context, key CacheKey, payload json.RawMessage, computedAt time.Time) error

	// Invalidate removes an entry if present
	Invalidate(ctx context.Context, key CacheKey) error
}
