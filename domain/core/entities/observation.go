package entities

import "time"

// ObservationKind distinguishes how an observation was captured.
type ObservationKind string

const (
	ObservationFreewrite ObservationKind = "freewrite"
	ObservationVoice     ObservationKind = "voice"
	ObservationPrompt    ObservationKind = "prompt"
)

// Observation is a free-form captured note. Observations with a
// non-empty Summary double as the "document" stream for synthesis.
type Observation struct {
	ID        string
	UserID    string
	Text      string
	Kind      ObservationKind
	Summary   string // optional, produced by the capture pipeline
	CreatedAt time.Time
}

// HasSummary reports whether the observation carries a summary.
func (o Observation) HasSummary() bool {
	return o.Summary != ""
}
