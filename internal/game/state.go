package game

import "github.com/mitchelldurbincs/mobai/internal/game/core"

// GameState is the complete mutable state of one game
type GameState struct {
	Turn int
	Grid *core.Grid
	// Fog is the last computed fog-of-war per side
	Fog map[core.Side]core.PositionSet

	Finished  bool
	Winner    core.Side
	HasWinner bool
}

func newGameState(grid *core.Grid, turn int) *GameState {
	return &GameState{
		Turn:   turn,
		Grid:   grid,
		Fog:    make(map[core.Side]core.PositionSet, len(core.Sides)),
		Winner: core.NoSide,
	}
}
