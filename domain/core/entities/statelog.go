package entities

import "time"

// StateLog is one emotional-state check-in. Resonated stays nil until
// the user judges whether the surfaced reflection helped.
type StateLog struct {
	ID        string
	UserID    string
	State     string
	CreatedAt time.Time
	Resonated *bool
}

// DidResonate reports whether the user marked this entry as resonating.
func (s StateLog) DidResonate() bool {
	return s.Resonated != nil && *s.Resonated
}
