package entities

import "time"

// Insight is a short captured realization. Insights are immutable once
// created; the detection pipeline only ever reads them.
type Insight struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	TopicID   string  // empty when the insight is unfiled
	Relevance float64 // optional score set by the capture flow
	CreatedAt time.Time
}

// HasTopic reports whether the insight is filed under a topic.
func (i Insight) HasTopic() bool {
	return i.TopicID != ""
}

// Topic is a flat grouping key for insights. There is no hierarchy.
type Topic struct {
	ID     string
	UserID string
	Name   string
}
