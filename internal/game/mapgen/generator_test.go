package mapgen

import (
	"fmt"
	"testing"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() core.IDSource {
	n := 0
	return func() core.UnitID {
		n++
		return core.UnitID(fmt.Sprintf("b-%d", n))
	}
}

func TestDefaultMapConfig(t *testing.T) {
	config := DefaultMapConfig(36, 21)

	assert.Equal(t, 36, config.Width)
	assert.Equal(t, 21, config.Height)
	assert.Equal(t, core.DefaultRatio, config.Ratio)
	assert.Equal(t, core.DefaultStats(core.KindFort), config.StatsFor(core.KindFort))
}

func TestNewGenerator(t *testing.T) {
	config := DefaultMapConfig(36, 21)
	generator := NewGenerator(config, nil)

	require.NotNil(t, generator)
	assert.Equal(t, config, generator.config)
	assert.NotNil(t, generator.ids, "nil id source falls back to uuids")
}

func TestGenerateMap_PlacesBuildings(t *testing.T) {
	generator := NewGenerator(DefaultMapConfig(36, 21), sequentialIDs())

	grid, placements, err := generator.GenerateMap()
	require.NoError(t, err)
	require.Len(t, placements, 12)

	forts := map[core.Side]int{}
	towers := map[core.Side]int{}
	for _, p := range placements {
		tile, err := grid.TileAt(p.Pos)
		require.NoError(t, err)
		assert.Same(t, p.Unit, tile.Building())

		switch p.Unit.Kind {
		case core.KindFort:
			forts[p.Unit.Side]++
			assert.Contains(t, []int{0, 35}, p.Pos.X)
			assert.Equal(t, 150, p.Unit.Health)
		case core.KindTower:
			towers[p.Unit.Side]++
			assert.Contains(t, []int{10, 25}, p.Pos.X)
			assert.Equal(t, 100, p.Unit.Health)
		}
		assert.Equal(t, grid.SideOf(p.Pos), p.Unit.Side)
	}

	assert.Equal(t, map[core.Side]int{core.Side0: 3, core.Side1: 3}, forts)
	assert.Equal(t, map[core.Side]int{core.Side0: 3, core.Side1: 3}, towers)
	assert.Equal(t, core.UnitID("b-1"), placements[0].Unit.ID)
	assert.Len(t, grid.Units(), 12)
}

func TestGenerateMap_StatOverrides(t *testing.T) {
	config := DefaultMapConfig(36, 21)
	config.Stats = map[core.UnitKind]core.Stats{
		core.KindTower: {Health: 10, Vision: 1, Hit: 1, Attack: 2},
	}

	grid, _, err := NewGenerator(config, sequentialIDs()).GenerateMap()
	require.NoError(t, err)

	tile, err := grid.TileAt(core.Coordinate{X: 10, Y: 10})
	require.NoError(t, err)
	tower := tile.Building()
	require.NotNil(t, tower)
	assert.Equal(t, 10, tower.Health)
	assert.Equal(t, 1, tower.Vision)

	tile, err = grid.TileAt(core.Coordinate{X: 0, Y: 10})
	require.NoError(t, err)
	assert.Equal(t, 150, tile.Building().Health)
}

func TestGenerateMap_SmallerLayout(t *testing.T) {
	grid, placements, err := NewGenerator(DefaultMapConfig(22, 13), sequentialIDs()).GenerateMap()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 6, 15, 21}, grid.XMarkers())
	assert.Equal(t, []int{0, 6, 12}, grid.YMarkers())
	assert.Len(t, placements, 12)
}

func TestGenerateMap_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		err    error
	}{
		{"NotDivisible", 30, 21, core.ErrInvalidDimensions},
		{"OddWidth", 15, 21, core.ErrOddWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewGenerator(DefaultMapConfig(tt.width, tt.height), nil).GenerateMap()
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
