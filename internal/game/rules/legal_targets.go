package rules

import (
	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
)

// UnitCandidates lists the commands a side could legally give one unit
type UnitCandidates struct {
	Unit     *core.Unit
	Commands []orders.Command
}

// LegalTargetCalculator enumerates commands the order validator would accept
type LegalTargetCalculator struct{}

// NewLegalTargetCalculator creates a new legal target calculator
func NewLegalTargetCalculator() *LegalTargetCalculator {
	return &LegalTargetCalculator{}
}

// TargetCandidates returns, for every unit of side in map order, a stop
// command followed by every visible enemy as a unit target and, for mobile
// units, every other visible position as a tile target. visible must be the
// fog-of-war of side.
func (lc *LegalTargetCalculator) TargetCandidates(g *core.Grid, side core.Side, visible core.PositionSet) []UnitCandidates {
	var enemies []*core.Unit
	for _, u := range g.UnitsOf(side.Opponent()) {
		if core.CanSee(g, visible, u) {
			enemies = append(enemies, u)
		}
	}
	positions := visible.Sorted()

	var out []UnitCandidates
	for _, u := range g.UnitsOf(side) {
		cands := UnitCandidates{Unit: u}
		cands.Commands = append(cands.Commands, orders.Command{UnitID: u.ID, Action: orders.ActionStop})

		for _, enemy := range enemies {
			id := enemy.ID
			cands.Commands = append(cands.Commands, orders.Command{UnitID: u.ID, Action: orders.ActionTarget, TargetUnit: &id})
		}

		if u.IsMobile() {
			here, _ := g.PositionOf(u)
			for _, p := range positions {
				if p == here {
					continue
				}
				pos := p
				cands.Commands = append(cands.Commands, orders.Command{UnitID: u.ID, Action: orders.ActionTarget, TargetPos: &pos})
			}
		}
		out = append(out, cands)
	}
	return out
}
