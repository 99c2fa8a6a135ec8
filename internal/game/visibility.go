package game

import "github.com/mitchelldurbincs/mobai/internal/game/core"

// This file contains the fog-of-war bookkeeping of the engine.

// updateFogOfWar recomputes the visible positions of every side
func (e *Engine) updateFogOfWar() {
	for _, side := range core.Sides {
		e.gs.Fog[side] = core.VisibleBy(e.gs.Grid, side)
	}
	e.logger.Debug().
		Int("side0_visible", e.gs.Fog[core.Side0].Len()).
		Int("side1_visible", e.gs.Fog[core.Side1].Len()).
		Msg("Performed full visibility update")
}

// VisibleTo returns a copy of the fog-of-war of side as of the last turn
// boundary
func (e *Engine) VisibleTo(side core.Side) core.PositionSet {
	out := core.NewPositionSet()
	out.Union(e.gs.Fog[side])
	return out
}

// fogSnapshot computes the fog-of-war of both sides from the current map
func fogSnapshot(g *core.Grid) map[core.Side]core.PositionSet {
	fog := make(map[core.Side]core.PositionSet, len(core.Sides))
	for _, side := range core.Sides {
		fog[side] = core.VisibleBy(g, side)
	}
	return fog
}
