package core

import (
	"fmt"
	"sort"
)

// Tile is a single valid cell of the lane map and owns its occupant list.
type Tile struct {
	Pos       Coordinate
	index     int
	occupants []*Unit
}

func newTile(pos Coordinate, index int) *Tile {
	return &Tile{Pos: pos, index: index}
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile%s", t.Pos)
}

// Add appends u to the occupants and points u at this tile. A unit
// already standing anywhere must be removed first.
func (t *Tile) Add(u *Unit) error {
	if t.has(u) || u.Placed() {
		return WrapUnitError(u, "add to "+t.String(), ErrAlreadyOnTile)
	}
	if u.IsBuilding() && t.Building() != nil {
		return WrapUnitError(u, "add to "+t.String(), ErrBuildingOccupied)
	}
	u.tile = t.index
	t.occupants = append(t.occupants, u)
	return nil
}

// Remove takes a mobile unit off this tile.
func (t *Tile) Remove(u *Unit) error {
	i := t.indexOf(u)
	if i < 0 {
		return WrapUnitError(u, "remove from "+t.String(), ErrNotOnTile)
	}
	if u.IsBuilding() {
		return WrapUnitError(u, "remove from "+t.String(), ErrBuildingImmovable)
	}
	t.occupants = append(t.occupants[:i], t.occupants[i+1:]...)
	u.tile = unplaced
	return nil
}

// Occupants returns a copy of the occupant list in insertion order.
func (t *Tile) Occupants() []*Unit {
	return append([]*Unit(nil), t.occupants...)
}

// OccupantsOf returns the occupants owned by side. A non-empty kinds
// restricts the result to those kinds; a non-nil less sorts it stably.
func (t *Tile) OccupantsOf(side Side, kinds []UnitKind, less func(a, b *Unit) bool) []*Unit {
	var out []*Unit
	for _, u := range t.occupants {
		if u.Side != side {
			continue
		}
		if len(kinds) > 0 && !containsKind(kinds, u.Kind) {
			continue
		}
		out = append(out, u)
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Enemies returns the occupants not owned by side, in insertion order.
func (t *Tile) Enemies(side Side) []*Unit {
	var out []*Unit
	for _, u := range t.occupants {
		if u.Side != side {
			out = append(out, u)
		}
	}
	return out
}

// Building returns the building on this tile, if any.
func (t *Tile) Building() *Unit {
	for _, u := range t.occupants {
		if u.IsBuilding() {
			return u
		}
	}
	return nil
}

// PurgeDefeated drops every occupant with non-positive health, buildings
// included, and returns them in their former order.
func (t *Tile) PurgeDefeated() []*Unit {
	var removed []*Unit
	kept := t.occupants[:0]
	for _, u := range t.occupants {
		if u.Health <= 0 {
			u.tile = unplaced
			removed = append(removed, u)
			continue
		}
		kept = append(kept, u)
	}
	for i := len(kept); i < len(t.occupants); i++ {
		t.occupants[i] = nil
	}
	t.occupants = kept
	return removed
}

func (t *Tile) has(u *Unit) bool { return t.indexOf(u) >= 0 }

func (t *Tile) indexOf(u *Unit) int {
	for i, o := range t.occupants {
		if o == u || o.ID == u.ID {
			return i
		}
	}
	return -1
}

func containsKind(kinds []UnitKind, k UnitKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
