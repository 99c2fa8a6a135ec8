package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTile_Add(t *testing.T) {
	g := newDefaultGrid(t)
	tile, err := g.TileAt(Coordinate{0, 0})
	require.NoError(t, err)

	fort := newTestUnit(KindFort, Side0)
	require.NoError(t, tile.Add(fort))
	assert.Same(t, tile, g.TileOf(fort))

	t.Run("DuplicateRejected", func(t *testing.T) {
		assert.ErrorIs(t, tile.Add(fort), ErrAlreadyOnTile)
	})

	t.Run("UnitOnAnotherTileRejected", func(t *testing.T) {
		soldier := placeUnit(t, g, KindSoldier, Side0, 1, 0)
		other, err := g.TileAt(Coordinate{2, 0})
		require.NoError(t, err)

		assert.ErrorIs(t, other.Add(soldier), ErrAlreadyOnTile)
		assert.Empty(t, other.Occupants())
		pos, _ := g.PositionOf(soldier)
		assert.Equal(t, Coordinate{1, 0}, pos)

		count := 0
		for _, u := range g.Units() {
			if u == soldier {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("SecondBuildingRejected", func(t *testing.T) {
		tower := newTestUnit(KindTower, Side0)
		assert.ErrorIs(t, tile.Add(tower), ErrBuildingOccupied)
		assert.False(t, tower.Placed())
	})

	t.Run("SoldiersShareWithBuilding", func(t *testing.T) {
		require.NoError(t, tile.Add(newTestUnit(KindSoldier, Side0)))
		require.NoError(t, tile.Add(newTestUnit(KindSoldier, Side1)))
		assert.Len(t, tile.Occupants(), 3)
		assert.Same(t, fort, tile.Building())
	})
}

func TestTile_Remove(t *testing.T) {
	g := newDefaultGrid(t)
	fort := placeUnit(t, g, KindFort, Side0, 0, 0)
	soldier := placeUnit(t, g, KindSoldier, Side0, 0, 0)
	tile := g.TileOf(fort)

	assert.ErrorIs(t, tile.Remove(fort), ErrBuildingImmovable)
	assert.ErrorIs(t, tile.Remove(newTestUnit(KindSoldier, Side0)), ErrNotOnTile)

	require.NoError(t, tile.Remove(soldier))
	assert.False(t, soldier.Placed())
	assert.Nil(t, g.TileOf(soldier))
	assert.Equal(t, []*Unit{fort}, tile.Occupants())

	assert.ErrorIs(t, tile.Remove(soldier), ErrNotOnTile)
}

func TestTile_OccupantsOf(t *testing.T) {
	g := newDefaultGrid(t)
	tower := placeUnit(t, g, KindTower, Side0, 10, 0)
	a := placeUnit(t, g, KindSoldier, Side0, 10, 0)
	enemy := placeUnit(t, g, KindSoldier, Side1, 10, 0)
	b := placeUnit(t, g, KindSoldier, Side0, 10, 0)
	tile := g.TileOf(tower)

	assert.Equal(t, []*Unit{tower, a, b}, tile.OccupantsOf(Side0, nil, nil))
	assert.Equal(t, []*Unit{a, b}, tile.OccupantsOf(Side0, []UnitKind{KindSoldier}, nil))
	assert.Equal(t, []*Unit{enemy}, tile.OccupantsOf(Side1, nil, nil))
	assert.Equal(t, []*Unit{enemy}, tile.Enemies(Side0))

	tower.Vision = 3
	byVision := tile.OccupantsOf(Side0, nil, func(x, y *Unit) bool { return x.Vision < y.Vision })
	assert.Equal(t, []*Unit{a, b, tower}, byVision, "stable sort keeps insertion order among equals")
}

func TestTile_PurgeDefeated(t *testing.T) {
	g := newDefaultGrid(t)
	tower := placeUnit(t, g, KindTower, Side0, 10, 0)
	alive := placeUnit(t, g, KindSoldier, Side0, 10, 0)
	dead := placeUnit(t, g, KindSoldier, Side1, 10, 0)
	tile := g.TileOf(tower)

	dead.Health = 0
	tower.Health = -4

	removed := tile.PurgeDefeated()

	assert.Equal(t, []*Unit{tower, dead}, removed)
	assert.Equal(t, []*Unit{alive}, tile.Occupants())
	assert.False(t, tower.Placed())
	assert.False(t, dead.Placed())
	assert.Nil(t, tile.Building())
}
