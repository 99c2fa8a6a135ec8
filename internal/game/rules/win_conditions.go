package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver decides the game from the number of units each side still
// has on the map. The game is over once at most one side retains units;
// that side wins, and nobody wins when both are wiped out together.
// Returns (isGameOver, winner, hasWinner).
func (wc *WinConditionChecker) CheckGameOver(counts map[core.Side]int) (bool, core.Side, bool) {
	wc.logger.Debug().Msg("Checking game over conditions")

	alive := 0
	winner := core.NoSide
	for _, side := range core.Sides {
		if counts[side] > 0 {
			alive++
			winner = side
		}
	}

	gameOver := alive <= 1
	hasWinner := alive == 1
	if !hasWinner {
		winner = core.NoSide
	}

	if gameOver && hasWinner {
		wc.logger.Info().Int("winner_side", int(winner)).Msg("Winner determined")
	} else if gameOver {
		wc.logger.Info().Msg("No winner found, both sides eliminated")
	}

	wc.logger.Debug().
		Bool("is_game_over", gameOver).
		Int("sides_with_units", alive).
		Int("side0_units", counts[core.Side0]).
		Int("side1_units", counts[core.Side1]).
		Msg("Game over check complete")

	return gameOver, winner, hasWinner
}
