package core

import "sort"

// PositionSet is an unordered set of map positions.
type PositionSet map[Coordinate]struct{}

// NewPositionSet returns a set holding positions.
func NewPositionSet(positions ...Coordinate) PositionSet {
	s := make(PositionSet, len(positions))
	for _, p := range positions {
		s[p] = struct{}{}
	}
	return s
}

func (s PositionSet) Add(c Coordinate) { s[c] = struct{}{} }

func (s PositionSet) Contains(c Coordinate) bool {
	_, ok := s[c]
	return ok
}

func (s PositionSet) Len() int { return len(s) }

// Union adds every position of other to s.
func (s PositionSet) Union(other PositionSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// Sorted returns the positions in row-major order.
func (s PositionSet) Sorted() []Coordinate {
	out := make([]Coordinate, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sortRowMajor(out)
	return out
}

// PositionsWithinRange returns the plus-shaped footprint of u: its own
// position and, for every step 1..reach, the valid positions exactly that
// many steps away along each axis. Row-major order. Not a filled disk.
func PositionsWithinRange(g *Grid, u *Unit, reach int) []Coordinate {
	pos, ok := g.PositionOf(u)
	if !ok {
		return nil
	}
	return footprint(g, pos, reach)
}

func footprint(g *Grid, pos Coordinate, reach int) []Coordinate {
	out := []Coordinate{pos}
	for step := 1; step <= reach; step++ {
		for _, d := range []Direction{North, East, South, West} {
			p := pos.Step(d, step)
			if g.IsValid(p) {
				out = append(out, p)
			}
		}
	}
	sortRowMajor(out)
	return out
}

// VisiblePositions is the vision footprint of u.
func VisiblePositions(g *Grid, u *Unit) []Coordinate {
	return PositionsWithinRange(g, u, u.Vision)
}

// HitPositions is the attack footprint of u.
func HitPositions(g *Grid, u *Unit) []Coordinate {
	return PositionsWithinRange(g, u, u.Hit)
}

// HittableUnits returns the enemies inside the hit footprint of u: tiles
// row-major, then occupant insertion order.
func HittableUnits(g *Grid, u *Unit) []*Unit {
	var out []*Unit
	for _, p := range HitPositions(g, u) {
		t, err := g.TileAt(p)
		if err != nil {
			continue
		}
		out = append(out, t.Enemies(u.Side)...)
	}
	return out
}

// CanHit reports whether target is hostile and inside the hit footprint of u.
func CanHit(g *Grid, u, target *Unit) bool {
	if !u.IsHostile(target) {
		return false
	}
	pos, ok := g.PositionOf(target)
	if !ok {
		return false
	}
	for _, p := range HitPositions(g, u) {
		if p == pos {
			return true
		}
	}
	return false
}

// VisibleBy is the fog-of-war of side: the union of the vision footprints
// of every unit it owns.
func VisibleBy(g *Grid, side Side) PositionSet {
	visible := make(PositionSet)
	for _, u := range g.UnitsOf(side) {
		for _, p := range VisiblePositions(g, u) {
			visible.Add(p)
		}
	}
	return visible
}

// CanSee reports whether target stands inside visible.
func CanSee(g *Grid, visible PositionSet, target *Unit) bool {
	pos, ok := g.PositionOf(target)
	return ok && visible.Contains(pos)
}

func sortRowMajor(cs []Coordinate) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}
