package queries

import (
	"errors"

	"inward-backend/domain/patterns"
)

// GetPatternMirrorQuery represents a query for the user's recurring
// emotional states
type GetPatternMirrorQuery struct {
	UserID string
}

// Validate validates the GetPatternMirrorQuery
func (q GetPatternMirrorQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// GetPatternMirrorResult represents the result of a pattern mirror
// query. Dismissed means the user closed the mirror today and the UI
// should suppress it until tomorrow.
type GetPatternMirrorResult struct {
	Dismissed bool                    `json:"dismissed"`
	Patterns  []patterns.StatePattern `json:"patterns"`
}
