package core

import (
	"fmt"
)

// Side identifies one of the two competing parties.
type Side int

const (
	// NoSide marks the absence of a side, e.g. a game without a winner.
	NoSide Side = -1
	Side0  Side = 0
	Side1  Side = 1
)

// Sides lists both playing sides in evaluation order.
var Sides = [...]Side{Side0, Side1}

// Valid reports whether s is one of the two playing sides.
func (s Side) Valid() bool { return s == Side0 || s == Side1 }

// Opponent returns the other playing side.
func (s Side) Opponent() Side {
	if s == Side0 {
		return Side1
	}
	return Side0
}

func (s Side) String() string {
	if !s.Valid() {
		return "none"
	}
	return fmt.Sprintf("side%d", int(s))
}

// Ratio is the width:height proportion the lane layout is derived from.
type Ratio struct {
	X, Y int
}

// DefaultRatio is the 7:4 layout used by the default 36x21 map.
var DefaultRatio = Ratio{X: 7, Y: 4}

// Lane marker multiples, applied to (W-1)/ratio.X and (H-1)/ratio.Y.
var (
	xMarkerSteps = []int{0, 2, 5, 7}
	yMarkerSteps = []int{0, 2, 4}
)

// BuildingSlot is a lane intersection that receives a building at game start.
type BuildingSlot struct {
	Pos  Coordinate
	Kind UnitKind
	Side Side
}

// Grid is the lane map. It owns every tile in a row-major arena; tiles
// only exist at valid positions.
type Grid struct {
	width    int
	height   int
	ratio    Ratio
	xMarkers []int
	yMarkers []int
	tiles    []*Tile
}

// NewGrid builds the lane topology for a width x height map.
func NewGrid(width, height int, ratio Ratio) (*Grid, error) {
	if width <= 1 || height <= 1 || ratio.X <= 0 || ratio.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d ratio %d:%d", ErrInvalidDimensions, width, height, ratio.X, ratio.Y)
	}
	if (width-1)%ratio.X != 0 || (height-1)%ratio.Y != 0 {
		return nil, fmt.Errorf("%w: (%d-1) and (%d-1) must be divisible by %d and %d",
			ErrInvalidDimensions, width, height, ratio.X, ratio.Y)
	}
	if width%2 != 0 {
		return nil, fmt.Errorf("%w: width %d", ErrOddWidth, width)
	}

	g := &Grid{
		width:  width,
		height: height,
		ratio:  ratio,
		tiles:  make([]*Tile, width*height),
	}

	xStep := (width - 1) / ratio.X
	yStep := (height - 1) / ratio.Y
	for _, m := range xMarkerSteps {
		g.xMarkers = append(g.xMarkers, xStep*m)
	}
	for _, m := range yMarkerSteps {
		g.yMarkers = append(g.yMarkers, yStep*m)
	}

	for idx := range g.tiles {
		pos := FromIndex(idx, width)
		if g.IsValid(pos) {
			g.tiles[idx] = newTile(pos, idx)
		}
	}
	return g, nil
}

func (g *Grid) Width() int   { return g.width }
func (g *Grid) Height() int  { return g.height }
func (g *Grid) Ratio() Ratio { return g.ratio }

// XMarkers returns the lane columns.
func (g *Grid) XMarkers() []int { return append([]int(nil), g.xMarkers...) }

// YMarkers returns the lane rows.
func (g *Grid) YMarkers() []int { return append([]int(nil), g.yMarkers...) }

// InBounds reports whether c lies inside the map rectangle.
func (g *Grid) InBounds(c Coordinate) bool {
	return c.InBounds(g.width, g.height)
}

// IsValid reports whether c is a play position: in bounds and on a lane.
func (g *Grid) IsValid(c Coordinate) bool {
	if !g.InBounds(c) {
		return false
	}
	for _, x := range g.xMarkers {
		if c.X == x {
			return true
		}
	}
	for _, y := range g.yMarkers {
		if c.Y == y {
			return true
		}
	}
	return false
}

// TileAt returns the tile at c.
func (g *Grid) TileAt(c Coordinate) (*Tile, error) {
	if !g.IsValid(c) {
		return nil, fmt.Errorf("%w: %s", ErrTileNotFound, c)
	}
	return g.tiles[c.ToIndex(g.width)], nil
}

func (g *Grid) tileByIndex(idx int) *Tile {
	if idx < 0 || idx >= len(g.tiles) {
		return nil
	}
	return g.tiles[idx]
}

// NeighborPositions returns the valid orthogonal neighbors of c.
func (g *Grid) NeighborPositions(c Coordinate) []Coordinate {
	var out []Coordinate
	for _, n := range c.Neighbors() {
		if g.IsValid(n) {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors returns the tiles adjacent to t.
func (g *Grid) Neighbors(t *Tile) []*Tile {
	positions := g.NeighborPositions(t.Pos)
	out := make([]*Tile, 0, len(positions))
	for _, p := range positions {
		out = append(out, g.tiles[p.ToIndex(g.width)])
	}
	return out
}

// IsNeighbor reports whether b is adjacent to a on the lane graph.
func (g *Grid) IsNeighbor(a, b *Tile) bool {
	return a != nil && b != nil && a.Pos.IsAdjacentTo(b.Pos)
}

// owns reports whether t is a tile of this grid rather than of another one
func (g *Grid) owns(t *Tile) bool {
	return t != nil && g.tileByIndex(t.index) == t
}

// Tiles returns every tile in row-major order.
func (g *Grid) Tiles() []*Tile {
	out := make([]*Tile, 0, len(g.tiles))
	for _, t := range g.tiles {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// SideOf returns the owner of the half of the map c lies in.
func (g *Grid) SideOf(c Coordinate) Side {
	if c.X < g.width/2 {
		return Side0
	}
	return Side1
}

// BuildingSlots lists the initial building placements, x-major.
func (g *Grid) BuildingSlots() []BuildingSlot {
	minX := g.xMarkers[0]
	maxX := g.xMarkers[len(g.xMarkers)-1]

	slots := make([]BuildingSlot, 0, len(g.xMarkers)*len(g.yMarkers))
	for _, x := range g.xMarkers {
		for _, y := range g.yMarkers {
			pos := Coordinate{X: x, Y: y}
			kind := KindTower
			if x == minX || x == maxX {
				kind = KindFort
			}
			slots = append(slots, BuildingSlot{Pos: pos, Kind: kind, Side: g.SideOf(pos)})
		}
	}
	return slots
}

// Place adds u to the tile at c.
func (g *Grid) Place(u *Unit, c Coordinate) error {
	t, err := g.TileAt(c)
	if err != nil {
		return WrapUnitError(u, "place", err)
	}
	return t.Add(u)
}

// TileOf returns the tile u stands on, or nil when u is not placed.
func (g *Grid) TileOf(u *Unit) *Tile {
	if u == nil {
		return nil
	}
	return g.tileByIndex(u.tile)
}

// PositionOf returns the position of u, derived from its tile.
func (g *Grid) PositionOf(u *Unit) (Coordinate, bool) {
	t := g.TileOf(u)
	if t == nil {
		return Coordinate{}, false
	}
	return t.Pos, true
}

// Units returns every unit on the map: tiles row-major, then occupant
// insertion order within a tile. This order is the evaluation order of
// every turn phase.
func (g *Grid) Units() []*Unit {
	var out []*Unit
	for _, t := range g.tiles {
		if t == nil {
			continue
		}
		out = append(out, t.occupants...)
	}
	return out
}

// UnitsOf returns the units owned by side in evaluation order.
func (g *Grid) UnitsOf(side Side) []*Unit {
	var out []*Unit
	for _, t := range g.tiles {
		if t == nil {
			continue
		}
		out = append(out, t.OccupantsOf(side, nil, nil)...)
	}
	return out
}

// UnitIndex maps every unit id on the map to its unit.
func (g *Grid) UnitIndex() map[UnitID]*Unit {
	index := make(map[UnitID]*Unit)
	for _, u := range g.Units() {
		index[u.ID] = u
	}
	return index
}

// UnitCounts returns how many units each side has on the map.
func (g *Grid) UnitCounts() map[Side]int {
	counts := make(map[Side]int, len(Sides))
	for _, s := range Sides {
		counts[s] = 0
	}
	for _, u := range g.Units() {
		counts[u.Side]++
	}
	return counts
}

// Forts returns the forts owned by side in evaluation order.
func (g *Grid) Forts(side Side) []*Unit {
	var out []*Unit
	for _, u := range g.UnitsOf(side) {
		if u.Kind == KindFort {
			out = append(out, u)
		}
	}
	return out
}
