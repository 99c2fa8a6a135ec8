package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext is the game data the lifecycle guards look at. The engine
// keeps Turn, Finished and Winner in sync; the machine owns the clock
// fields and Error.
type GameContext struct {
	GameID string
	Logger zerolog.Logger

	// Seated is the number of sides at the table, Required the number a
	// game needs before it can start
	Seated   int
	Required int

	Turn     int
	Finished bool
	// Winner is the winning side, -1 while undecided or on a draw
	Winner int

	// Error is the cause of the move to PhaseError
	Error error

	StartedAt time.Time
	pausedAt  time.Time
	paused    time.Duration
}

// NewGameContext creates a context for a game needing required sides
func NewGameContext(gameID string, required int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:   gameID,
		Logger:   logger.With().Str("game_id", gameID).Logger(),
		Required: required,
		Winner:   -1,
	}
}

// IsSeated reports whether exactly the required sides are seated
func (gc *GameContext) IsSeated() bool {
	return gc.Required > 0 && gc.Seated == gc.Required
}

// PlayTime is the time spent running since the game started, pauses
// excluded. It is zero before the first PhaseRunning.
func (gc *GameContext) PlayTime(now time.Time) time.Duration {
	if gc.StartedAt.IsZero() {
		return 0
	}
	played := now.Sub(gc.StartedAt) - gc.paused
	if !gc.pausedAt.IsZero() {
		played -= now.Sub(gc.pausedAt)
	}
	return played
}
