package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/states"
	"github.com/mitchelldurbincs/mobai/internal/testutil"
)

func roundTrip(t *testing.T, e *Engine) *Engine {
	t.Helper()
	snap, err := e.Snapshot()
	require.NoError(t, err)
	data, err := MarshalSnapshot(snap)
	require.NoError(t, err)
	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)

	cfg := testGameConfig()
	cfg.IDs = testutil.SequentialIDs("restored")
	restored, err := RestoreEngine(context.Background(), cfg, decoded)
	require.NoError(t, err)
	return restored
}

func snapshotJSON(t *testing.T, e *Engine) string {
	t.Helper()
	snap, err := e.Snapshot()
	require.NoError(t, err)
	data, err := MarshalSnapshot(snap)
	require.NoError(t, err)
	return string(data)
}

func TestSnapshot_RoundTripMidGame(t *testing.T) {
	e := newTestEngine(t)
	hunter := testutil.PlaceUnit(t, e.Grid(), "hunter", core.KindSoldier, core.Side0, 12, 10)
	testutil.PlaceUnit(t, e.Grid(), "runner", core.KindSoldier, core.Side1, 14, 10)
	require.NoError(t, e.BeginTurn())

	fortTile, err := e.Grid().TileAt(core.NewCoordinate(0, 0))
	require.NoError(t, err)
	walker := fortTile.OccupantsOf(core.Side0, []core.UnitKind{core.KindSoldier}, nil)[0]

	_, err = e.SubmitOrders(core.Side0, rawCommands(t,
		`{"id": "hunter", "action": "target", "target": "runner"}`,
		`{"id": "`+string(walker.ID)+`", "action": "target", "target": {"posx": 0, "posy": 3}}`,
	))
	require.NoError(t, err)
	require.True(t, hunter.HasTarget())

	restored := roundTrip(t, e)
	assert.Equal(t, e.GameID(), restored.GameID())
	assert.Equal(t, e.Turn(), restored.Turn())
	assert.True(t, restored.TurnBegun())
	assert.Equal(t, states.PhaseRunning, restored.Phase())
	assert.JSONEq(t, snapshotJSON(t, e), snapshotJSON(t, restored))

	// both copies keep playing identically until the next spawn turn
	for i := 0; i < 5; i++ {
		require.NoError(t, e.EvaluateTurn())
		require.NoError(t, restored.EvaluateTurn())
		require.NoError(t, e.BeginTurn())
		require.NoError(t, restored.BeginTurn())
		assert.JSONEq(t, snapshotJSON(t, e), snapshotJSON(t, restored), "diverged at turn %d", e.Turn())
	}
}

func TestSnapshot_RoundTripBetweenTurns(t *testing.T) {
	e := newTestEngine(t)
	playRandomGame(t, e, 3, 12)

	restored := roundTrip(t, e)
	assert.False(t, restored.TurnBegun())
	assert.JSONEq(t, snapshotJSON(t, e), snapshotJSON(t, restored))

	view, err := e.StateFor(core.Side1)
	require.NoError(t, err)
	restoredView, err := restored.StateFor(core.Side1)
	require.NoError(t, err)
	assert.Equal(t, view, restoredView)
}

func TestSnapshot_FinishedGame(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.BeginTurn())
	for _, u := range e.Grid().UnitsOf(core.Side1) {
		u.Health = 0
	}
	require.NoError(t, e.EvaluateTurn())
	require.True(t, e.IsGameOver())

	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Finished)
	assert.Equal(t, int(core.Side0), snap.Winner)

	restored := roundTrip(t, e)
	assert.True(t, restored.IsGameOver())
	assert.Equal(t, states.PhaseEnded, restored.Phase())
	winner, ok := restored.Winner()
	assert.True(t, ok)
	assert.Equal(t, core.Side0, winner)
}

func TestSnapshot_RefusedMidTurn(t *testing.T) {
	e := newTestEngine(t)
	e.evaluating = true
	_, err := e.Snapshot()
	assert.ErrorIs(t, err, ErrMidTurnSnapshot)
}

func TestRestoreEngine_InvalidSnapshots(t *testing.T) {
	soldier := func(id string, x, y int) UnitSnapshot {
		return UnitSnapshot{ID: id, Kind: "Soldier", Side: 0, PosX: x, PosY: y, Health: 3, Vision: 2, Hit: 1, Attack: 1, ActionPoints: 1}
	}
	base := func(units ...UnitSnapshot) *Snapshot {
		return &Snapshot{GameID: "g", Width: 36, Height: 21, RatioX: 7, RatioY: 4, Winner: -1, Units: units}
	}

	tests := []struct {
		name string
		snap *Snapshot
	}{
		{"nil snapshot", nil},
		{"bad dimensions", &Snapshot{Width: 30, Height: 21, RatioX: 7, RatioY: 4}},
		{"unknown kind", base(UnitSnapshot{ID: "x", Kind: "Dragon"})},
		{"invalid side", base(UnitSnapshot{ID: "x", Kind: "Soldier", Side: 4})},
		{"off-lane position", base(soldier("a", 5, 5))},
		{"duplicate id", base(soldier("a", 1, 0), soldier("a", 2, 0))},
		{"missing id", base(soldier("", 1, 0))},
		{"unknown target", func() *Snapshot {
			s := soldier("a", 1, 0)
			s.TargetUnit = "ghost"
			return base(s)
		}()},
		{"unit and tile target", func() *Snapshot {
			s := soldier("a", 1, 0)
			s.TargetUnit = "b"
			s.TargetTile = &PositionView{PosX: 2, PosY: 0}
			b := soldier("b", 3, 0)
			b.Side = 1
			return base(s, b)
		}()},
		{"path not adjacent", func() *Snapshot {
			s := soldier("a", 1, 0)
			s.Path = []PositionView{{PosX: 3, PosY: 0}}
			return base(s)
		}()},
		{"building with tile target", base(UnitSnapshot{
			ID: "t", Kind: "Tower", Side: 0, PosX: 10, PosY: 0, Health: 100,
			TargetTile: &PositionView{PosX: 11, PosY: 0},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := RestoreEngine(context.Background(), testGameConfig(), tt.snap)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.Nil(t, e)
		})
	}
}

func TestRestoreEngine_FinishedFlagMustMatchMap(t *testing.T) {
	snap := &Snapshot{
		GameID: "g", Width: 36, Height: 21, RatioX: 7, RatioY: 4, Finished: true, Winner: -1,
		Units: []UnitSnapshot{
			{ID: "a", Kind: "Soldier", Side: 0, PosX: 1, PosY: 0, Health: 3},
			{ID: "b", Kind: "Soldier", Side: 1, PosX: 34, PosY: 0, Health: 3},
		},
	}
	_, err := RestoreEngine(context.Background(), testGameConfig(), snap)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestUnmarshalSnapshot_Garbage(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte(`{"turn": "soon"`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}
