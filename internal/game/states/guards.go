package states

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrNotSeated         = errors.New("sides not seated")
	ErrNotStarted        = errors.New("game has not started")
	ErrAlreadyFinished   = errors.New("game already finished")
	ErrNotFinished       = errors.New("game not finished")
	ErrNoCause           = errors.New("error phase needs a cause")
)

// guards are the preconditions for entering a phase. Phases without a
// guard can always be entered along an allowed transition.
var guards = map[GamePhase]func(*GameContext) error{
	PhaseStarting: requireSeated,
	PhaseRunning: func(gc *GameContext) error {
		if err := requireSeated(gc); err != nil {
			return err
		}
		if gc.Finished {
			return ErrAlreadyFinished
		}
		return nil
	},
	PhasePaused: func(gc *GameContext) error {
		if gc.StartedAt.IsZero() {
			return ErrNotStarted
		}
		return nil
	},
	PhaseEnding: func(gc *GameContext) error {
		if !gc.Finished {
			return ErrNotFinished
		}
		return nil
	},
	PhaseError: func(gc *GameContext) error {
		if gc.Error == nil {
			return ErrNoCause
		}
		return nil
	},
}

func requireSeated(gc *GameContext) error {
	if gc.Required < 2 || !gc.IsSeated() {
		return fmt.Errorf("%w: %d of %d", ErrNotSeated, gc.Seated, gc.Required)
	}
	return nil
}

func checkEnter(target GamePhase, gc *GameContext) error {
	if guard, ok := guards[target]; ok {
		return guard(gc)
	}
	return nil
}
