package core

import "fmt"

// SetTargetTile sends a mobile unit to tile along a shortest path. If the
// unit already stands on tile, its target and path are cleared.
func SetTargetTile(g *Grid, u *Unit, tile *Tile) error {
	if !u.IsMobile() {
		return WrapUnitError(u, "target tile", ErrBuildingImmovable)
	}
	current := g.TileOf(u)
	if current == nil {
		return WrapUnitError(u, "target tile", ErrUnitNotPlaced)
	}
	if tile == nil {
		return WrapUnitError(u, "target tile", ErrTileNotFound)
	}
	if current == tile {
		u.Stop()
		return nil
	}
	path, err := PathTiles(g, current, tile)
	if err != nil {
		return WrapUnitError(u, "target tile", err)
	}
	u.target = Target{Tile: tile}
	u.path = path
	return nil
}

// SetTargetUnit makes target the attack target of u. The target must be
// hostile and inside visible, the fog-of-war of u's side. Mobile units also
// path toward the target's current tile.
func SetTargetUnit(g *Grid, u, target *Unit, visible PositionSet) error {
	if target == nil {
		return WrapUnitError(u, "target unit", fmt.Errorf("nil target"))
	}
	if !u.IsHostile(target) {
		return WrapUnitError(u, "target unit", ErrFriendlyTarget)
	}
	if !CanSee(g, visible, target) {
		return WrapUnitError(u, "target unit", ErrTargetNotVisible)
	}
	if !u.IsMobile() {
		u.target = Target{Unit: target}
		return nil
	}

	current := g.TileOf(u)
	if current == nil {
		return WrapUnitError(u, "target unit", ErrUnitNotPlaced)
	}
	path, err := PathTiles(g, current, g.TileOf(target))
	if err != nil {
		return WrapUnitError(u, "target unit", err)
	}
	u.target = Target{Unit: target}
	u.path = path
	return nil
}
