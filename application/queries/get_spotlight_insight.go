package queries

import "errors"

// GetSpotlightInsightQuery represents a query for one insight to
// spotlight on the home surface
type GetSpotlightInsightQuery struct {
	UserID string
}

// Validate validates the GetSpotlightInsightQuery
func (q GetSpotlightInsightQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// GetSpotlightInsightResult represents the result of a spotlight query.
// Found is false when the user has no insights yet.
type GetSpotlightInsightResult struct {
	Found     bool   `json:"found"`
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
	TopicName string `json:"topic_name,omitempty"`
}
