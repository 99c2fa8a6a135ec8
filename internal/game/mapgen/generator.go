package mapgen

import (
	"fmt"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width  int
	Height int
	Ratio  core.Ratio
	// Stats overrides the base stats per building kind. Missing kinds use
	// core.DefaultStats.
	Stats map[core.UnitKind]core.Stats
}

// DefaultMapConfig returns the standard lane layout for a w x h map
func DefaultMapConfig(w, h int) MapConfig {
	return MapConfig{
		Width:  w,
		Height: h,
		Ratio:  core.DefaultRatio,
	}
}

// StatsFor returns the configured stats of kind.
func (c MapConfig) StatsFor(kind core.UnitKind) core.Stats {
	if s, ok := c.Stats[kind]; ok {
		return s
	}
	return core.DefaultStats(kind)
}

// Generator builds the lane grid and places the starting buildings
type Generator struct {
	config MapConfig
	ids    core.IDSource
}

// NewGenerator creates a new map generator. A nil ids uses core.NewUnitID.
func NewGenerator(config MapConfig, ids core.IDSource) *Generator {
	if ids == nil {
		ids = core.NewUnitID
	}
	return &Generator{
		config: config,
		ids:    ids,
	}
}

// GenerateMap creates the grid with a building on every building slot
func (g *Generator) GenerateMap() (*core.Grid, []BuildingPlacement, error) {
	grid, err := core.NewGrid(g.config.Width, g.config.Height, g.config.Ratio)
	if err != nil {
		return nil, nil, err
	}

	placements, err := g.placeBuildings(grid)
	if err != nil {
		return nil, nil, err
	}
	return grid, placements, nil
}

func (g *Generator) placeBuildings(grid *core.Grid) ([]BuildingPlacement, error) {
	slots := grid.BuildingSlots()
	placements := make([]BuildingPlacement, 0, len(slots))

	for _, slot := range slots {
		u := core.NewUnit(g.ids(), slot.Kind, slot.Side, g.config.StatsFor(slot.Kind))
		if err := grid.Place(u, slot.Pos); err != nil {
			return nil, fmt.Errorf("placing %s at %s: %w", slot.Kind, slot.Pos, err)
		}
		placements = append(placements, BuildingPlacement{Unit: u, Pos: slot.Pos})
	}
	return placements, nil
}

// BuildingPlacement tracks where a building was placed
type BuildingPlacement struct {
	Unit *core.Unit
	Pos  core.Coordinate
}
