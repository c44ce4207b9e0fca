package commands

import "errors"

// DismissPatternMirrorCommand suppresses the pattern mirror for the
// rest of the current UTC day
type DismissPatternMirrorCommand struct {
	UserID string `validate:"required"`
}

// Validate validates the DismissPatternMirrorCommand
func (c DismissPatternMirrorCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}
