package emergence

import "time"

// Kind classifies a finding.
type Kind string

const (
	KindConnection Kind = "connection" // shared vocabulary across insights
	KindPattern    Kind = "pattern"    // behavior lining up with an experiment or identity
	KindThread     Kind = "thread"     // several insights accumulating under one topic
)

// LinkedItem is a reference to a source record backing a finding.
type LinkedItem struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

// Finding is the single most interesting connection the detector
// surfaced. Items carries at most three source references.
type Finding struct {
	Kind        Kind         `json:"kind"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	Items       []LinkedItem `json:"items,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Status distinguishes the three outcomes of a detection run. None of
// them is an error: callers render three distinct UI states.
type Status string

const (
	StatusFound        Status = "found"
	StatusNone         Status = "none"
	StatusInsufficient Status = "insufficient_data"
)

// Detection is the result of one detector run. Finding is non-nil only
// when Status is StatusFound.
type Detection struct {
	Status  Status   `json:"status"`
	Finding *Finding `json:"finding,omitempty"`
}

func found(f *Finding) Detection {
	return Detection{Status: StatusFound, Finding: f}
}
