package commands

import "errors"

// MarkResonanceCommand records whether a surfaced reflection resonated
// with the user
type MarkResonanceCommand struct {
	UserID     string `validate:"required"`
	StateLogID string `validate:"required"`
	Resonated  bool
}

// Validate validates the MarkResonanceCommand
func (c MarkResonanceCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user ID is required")
	}
	if c.StateLogID == "" {
		return errors.New("state log ID is required")
	}
	return nil
}
