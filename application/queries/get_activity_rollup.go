package queries

import (
	"errors"

	"inward-backend/domain/rollup"
)

// GetActivityRollupQuery represents a query for the trailing months of
// action activity
type GetActivityRollupQuery struct {
	UserID string
}

// Validate validates the GetActivityRollupQuery
func (q GetActivityRollupQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// GetActivityRollupResult represents the result of an activity rollup
// query
type GetActivityRollupResult struct {
	Months []rollup.MonthRollup `json:"months"`
}
