package patterns

import (
	"math"
	"sort"

	"inward-backend/domain/core/entities"
)

// Window and thresholds for the mirror computation.
const (
	WindowDays     = 14
	minOccurrences = 2
	maxPatterns    = 3
)

// StatePattern is one recurring emotional state with its resonance
// summary. ResonanceRate is a whole percentage of the state's entries
// the user marked as resonating.
type StatePattern struct {
	State          string `json:"state"`
	Count          int    `json:"count"`
	ResonatedCount int    `json:"resonated_count"`
	ResonanceRate  int    `json:"resonance_rate"`
}

// Mirror holds the recurring states surfaced for a user. An empty
// Patterns slice means nothing recurred often enough, which the
// interface layer renders as its own state rather than an error.
type Mirror struct {
	Patterns []StatePattern `json:"patterns"`
}

// Reflect aggregates state logs into recurring patterns. Logs are
// expected to already be limited to the mirror window. States seen
// fewer than two times are dropped, the rest are ranked by count with
// earlier first appearance breaking ties, and at most three survive.
func Reflect(logs []entities.StateLog) Mirror {
	type bucket struct {
		pattern StatePattern
		seen    int // first-appearance index, for stable tie-breaks
	}

	buckets := make(map[string]*bucket)
	order := 0
	for _, log := range logs {
		b, ok := buckets[log.State]
		if !ok {
			b = &bucket{pattern: StatePattern{State: log.State}, seen: order}
			buckets[log.State] = b
			order++
		}
		b.pattern.Count++
		if log.DidResonate() {
			b.pattern.ResonatedCount++
		}
	}

	recurring := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		if b.pattern.Count >= minOccurrences {
			recurring = append(recurring, b)
		}
	}

	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].pattern.Count != recurring[j].pattern.Count {
			return recurring[i].pattern.Count > recurring[j].pattern.Count
		}
		return recurring[i].seen < recurring[j].seen
	})
	if len(recurring) > maxPatterns {
		recurring = recurring[:maxPatterns]
	}

	patterns := make([]StatePattern, 0, len(recurring))
	for _, b := range recurring {
		p := b.pattern
		p.ResonanceRate = int(math.Round(float64(p.ResonatedCount) / float64(p.Count) * 100))
		patterns = append(patterns, p)
	}

	return Mirror{Patterns: patterns}
}
