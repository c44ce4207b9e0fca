package queries

import (
	"errors"

	"inward-backend/domain/emergence"
)

// GetEmergenceQuery represents a query for the user's current emergence
// finding. Refresh discards any cached finding and recomputes.
type GetEmergenceQuery struct {
	UserID  string
	Refresh bool
}

// Validate validates the GetEmergenceQuery
func (q GetEmergenceQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// GetEmergenceResult represents the result of an emergence query
type GetEmergenceResult struct {
	Status    emergence.Status   `json:"status"`
	Finding   *emergence.Finding `json:"finding,omitempty"`
	FromCache bool               `json:"from_cache"`
}
