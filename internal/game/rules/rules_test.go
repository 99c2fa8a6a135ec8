package rules

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
	"github.com/mitchelldurbincs/mobai/internal/testutil"
)

func TestCheckGameOver(t *testing.T) {
	tests := []struct {
		name      string
		counts    map[core.Side]int
		over      bool
		winner    core.Side
		hasWinner bool
	}{
		{"both sides alive", map[core.Side]int{core.Side0: 6, core.Side1: 6}, false, core.NoSide, false},
		{"side0 left", map[core.Side]int{core.Side0: 2, core.Side1: 0}, true, core.Side0, true},
		{"side1 left", map[core.Side]int{core.Side1: 1}, true, core.Side1, true},
		{"nobody left", map[core.Side]int{core.Side0: 0, core.Side1: 0}, true, core.NoSide, false},
		{"empty counts", nil, true, core.NoSide, false},
	}

	wc := NewWinConditionChecker(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			over, winner, hasWinner := wc.CheckGameOver(tt.counts)
			assert.Equal(t, tt.over, over)
			assert.Equal(t, tt.winner, winner)
			assert.Equal(t, tt.hasWinner, hasWinner)
		})
	}
}

func TestTargetCandidates_AllAcceptedByValidator(t *testing.T) {
	g, err := core.NewGrid(36, 21, core.DefaultRatio)
	require.NoError(t, err)

	place := func(id string, kind core.UnitKind, side core.Side, x, y int) *core.Unit {
		u := core.NewUnit(core.UnitID(id), kind, side, core.DefaultStats(kind))
		require.NoError(t, g.Place(u, core.NewCoordinate(x, y)))
		return u
	}
	tower := place("t0", core.KindTower, core.Side0, 10, 10)
	soldier := place("s0", core.KindSoldier, core.Side0, 12, 10)
	place("e0", core.KindSoldier, core.Side1, 14, 10)
	place("e1", core.KindSoldier, core.Side1, 30, 10)

	visible := core.VisibleBy(g, core.Side0)
	cands := NewLegalTargetCalculator().TargetCandidates(g, core.Side0, visible)
	require.Len(t, cands, 2)
	assert.Same(t, tower, cands[0].Unit)
	assert.Same(t, soldier, cands[1].Unit)

	// tower: stop + the one visible enemy
	require.Len(t, cands[0].Commands, 2)
	assert.Equal(t, orders.ActionStop, cands[0].Commands[0].Action)
	require.NotNil(t, cands[0].Commands[1].TargetUnit)
	assert.Equal(t, core.UnitID("e0"), *cands[0].Commands[1].TargetUnit)

	// soldier also gets every visible position except its own
	assert.Len(t, cands[1].Commands, 2+visible.Len()-1)

	for _, uc := range cands {
		for _, cmd := range uc.Commands {
			raw, err := json.Marshal(cmd)
			require.NoError(t, err)

			v := orders.NewValidator(zerolog.Nop(), nil, "g")
			res, err := v.Apply(g, core.Side0, visible, []json.RawMessage{raw})
			require.NoError(t, err)
			assert.Empty(t, res.Errors, "candidate %s rejected", cmd)

			tower.Stop()
			soldier.Stop()
		}
	}
}

func TestRandomOrderGenerator_Choose(t *testing.T) {
	g, err := core.NewGrid(36, 21, core.DefaultRatio)
	require.NoError(t, err)
	for i, x := range []int{11, 12, 13} {
		u := core.NewUnit(core.UnitID(fmt.Sprintf("s%d", i)), core.KindSoldier, core.Side0, core.DefaultStats(core.KindSoldier))
		require.NoError(t, g.Place(u, core.NewCoordinate(x, 10)))
	}
	cands := NewLegalTargetCalculator().TargetCandidates(g, core.Side0, core.VisibleBy(g, core.Side0))

	t.Run("always acting orders every unit once", func(t *testing.T) {
		cmds := NewRandomOrderGenerator(testutil.NewTestRNG(1), 1).Choose(cands)
		require.Len(t, cmds, 3)
		for i, cmd := range cmds {
			assert.Equal(t, cands[i].Unit.ID, cmd.UnitID)
		}
	})

	t.Run("never acting orders nothing", func(t *testing.T) {
		assert.Empty(t, NewRandomOrderGenerator(testutil.NewTestRNG(1), 0).Choose(cands))
	})

	t.Run("same seed same choice", func(t *testing.T) {
		a := NewRandomOrderGenerator(testutil.NewTestRNG(7), 0.5).Choose(cands)
		b := NewRandomOrderGenerator(testutil.NewTestRNG(7), 0.5).Choose(cands)
		assert.Equal(t, a, b)
	})
}
