package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// Default map dimensions used by fixtures
const (
	DefaultWidth  = 36
	DefaultHeight = 21
)

// NewDefaultGrid creates an empty 36x21 lane grid without buildings
func NewDefaultGrid(t testing.TB) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(DefaultWidth, DefaultHeight, core.DefaultRatio)
	require.NoError(t, err)
	return g
}

// PlaceUnit creates a unit with default stats and puts it on (x, y)
func PlaceUnit(t testing.TB, g *core.Grid, id string, kind core.UnitKind, side core.Side, x, y int) *core.Unit {
	t.Helper()
	u := core.NewUnit(core.UnitID(id), kind, side, core.DefaultStats(kind))
	require.NoError(t, g.Place(u, core.NewCoordinate(x, y)))
	return u
}
