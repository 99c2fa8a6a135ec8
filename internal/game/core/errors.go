package core

import (
	"errors"
	"fmt"
)

// Invariant violations. Any of these surfacing from the core is a defect in
// the engine or its caller, never a consequence of player input.
var (
	ErrInvalidDimensions = errors.New("invalid map dimensions")
	ErrOddWidth          = errors.New("odd map width is not supported")
	ErrTileNotFound      = errors.New("no tile at position")
	ErrAlreadyOnTile     = errors.New("unit already on tile")
	ErrBuildingOccupied  = errors.New("tile already holds a building")
	ErrNotOnTile         = errors.New("unit not on tile")
	ErrBuildingImmovable = errors.New("buildings cannot move")
	ErrUnitNotPlaced     = errors.New("unit is not placed on the map")
	ErrNotAdjacent       = errors.New("tiles are not adjacent")
	ErrUnreachable       = errors.New("target position unreachable")
	ErrNoActionPoints    = errors.New("no action points left")
	ErrTargetNotVisible  = errors.New("target not visible")
	ErrFriendlyTarget    = errors.New("target belongs to the same side")
	ErrGameOver          = errors.New("game is over")
	ErrInvalidSide       = errors.New("invalid side")
)

// UnitError attaches the acting unit to an error
type UnitError struct {
	UnitID    UnitID
	Kind      UnitKind
	Operation string
	Err       error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Kind, e.UnitID, e.Operation, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// WrapUnitError wraps err with the unit and operation it happened in.
// Returns nil for a nil error.
func WrapUnitError(u *Unit, operation string, err error) error {
	if err == nil {
		return nil
	}
	if u == nil {
		return fmt.Errorf("unit %s: %w", operation, err)
	}
	return &UnitError{UnitID: u.ID, Kind: u.Kind, Operation: operation, Err: err}
}

// GameStateError attaches the turn and phase to an error
type GameStateError struct {
	Turn  int
	Phase string
	Err   error
}

func (e *GameStateError) Error() string {
	return fmt.Sprintf("game turn %d [%s]: %v", e.Turn, e.Phase, e.Err)
}

func (e *GameStateError) Unwrap() error { return e.Err }

// WrapGameStateError wraps err with turn and phase context. Returns nil for a nil error.
func WrapGameStateError(turn int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return &GameStateError{Turn: turn, Phase: phase, Err: err}
}
