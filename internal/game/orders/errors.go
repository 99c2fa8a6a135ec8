package orders

import (
	"errors"
	"fmt"
)

// Rejection reasons for untrusted commands
var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrUnknownAction    = errors.New("unknown action")
	ErrMissingTarget    = errors.New("target action requires a target")
	ErrUnknownUnit      = errors.New("unknown unit")
	ErrNotOwned         = errors.New("unit does not belong to issuing side")
	ErrFriendlyTarget   = errors.New("target unit belongs to issuing side")
	ErrImmobileUnit     = errors.New("unit cannot move to a position")
	ErrInvalidPosition  = errors.New("target position is not a valid tile")
	ErrTargetNotVisible = errors.New("target not visible")
)

// CommandError ties a rejection reason to the command that caused it
type CommandError struct {
	Index  int
	UnitID string
	Action Action
	Err    error
}

func (e *CommandError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("command %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("command %d (%s %s): %v", e.Index, e.Action, e.UnitID, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func newCommandError(index int, cmd Command, err error) *CommandError {
	return &CommandError{
		Index:  index,
		UnitID: string(cmd.UnitID),
		Action: cmd.Action,
		Err:    err,
	}
}
