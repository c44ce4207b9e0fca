package queries

import "errors"

// SynthesizeQuery represents an on-demand synthesis request. Heavy and
// user-initiated; never run on a schedule.
type SynthesizeQuery struct {
	UserID string
}

// Validate validates the SynthesizeQuery
func (q SynthesizeQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// InputStats carries the raw record counts a synthesis run consumed,
// for display and debugging
type InputStats struct {
	Insights     int `json:"insights"`
	Documents    int `json:"documents"`
	Experiments  int `json:"experiments"`
	Actions      int `json:"actions"`
	Observations int `json:"observations"`
	Topics       int `json:"topics"`
}

// SynthesizeResult is the five-field synthesis payload. Fallback marks
// a canned response served in place of a failed model call.
type SynthesizeResult struct {
	Synthesis         string     `json:"synthesis"`
	CoreThemes        []string   `json:"core_themes"`
	EmergingDirection string     `json:"emerging_direction"`
	HiddenConnections []string   `json:"hidden_connections"`
	Distillation      string     `json:"distillation"`
	Fallback          bool       `json:"fallback"`
	InputStats        InputStats `json:"input_stats"`
}
