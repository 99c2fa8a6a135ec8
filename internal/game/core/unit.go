package core

import (
	"fmt"

	"github.com/google/uuid"
)

const unplaced = -1

// UnitID is the opaque, stable identifier of a unit.
type UnitID string

// IDSource produces unit identifiers.
type IDSource func() UnitID

// NewUnitID returns a random uuid v4 identifier.
func NewUnitID() UnitID {
	return UnitID(uuid.NewString())
}

// UnitKind is the closed set of unit variants.
type UnitKind int

const (
	KindTower UnitKind = iota
	KindFort
	KindSoldier
)

var kindNames = [...]string{
	KindTower:   "Tower",
	KindFort:    "Fort",
	KindSoldier: "Soldier",
}

func (k UnitKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseUnitKind maps a kind name back to its UnitKind.
func ParseUnitKind(name string) (UnitKind, error) {
	for k, n := range kindNames {
		if n == name {
			return UnitKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown unit kind %q", name)
}

// Capabilities distinguish the behavior of unit kinds.
type Capabilities struct {
	Mobile      bool
	AutoTargets bool
	Spawns      bool
}

var kindCapabilities = [...]Capabilities{
	KindTower:   {AutoTargets: true},
	KindFort:    {AutoTargets: true, Spawns: true},
	KindSoldier: {Mobile: true},
}

// Capabilities returns the behavior flags of k.
func (k UnitKind) Capabilities() Capabilities {
	if k < 0 || int(k) >= len(kindCapabilities) {
		return Capabilities{}
	}
	return kindCapabilities[k]
}

// Stats are the base values a unit is created with.
type Stats struct {
	Health int
	Vision int
	Hit    int
	Attack int
}

// DefaultStats returns the base stats of k.
func DefaultStats(k UnitKind) Stats {
	switch k {
	case KindTower:
		return Stats{Health: 100, Vision: 2, Hit: 1, Attack: 5}
	case KindFort:
		return Stats{Health: 150, Vision: 3, Hit: 1, Attack: 5}
	case KindSoldier:
		return Stats{Health: 3, Vision: 2, Hit: 1, Attack: 1}
	default:
		return Stats{}
	}
}

// Target is what a unit is currently after: an enemy unit, or a
// destination tile for mobile units. At most one field is set.
type Target struct {
	Unit *Unit
	Tile *Tile
}

// IsZero reports whether no target is set.
func (t Target) IsZero() bool { return t.Unit == nil && t.Tile == nil }

// Unit is a building or mobile unit on the map. Its position is always
// derived from the tile it stands on.
type Unit struct {
	ID           UnitID
	Kind         UnitKind
	Side         Side
	Health       int
	Vision       int
	Hit          int
	Attack       int
	ActionPoints int

	tile   int
	target Target
	path   []*Tile
}

// NewUnit creates an unplaced unit with the given stats and one action point.
func NewUnit(id UnitID, kind UnitKind, side Side, stats Stats) *Unit {
	return &Unit{
		ID:           id,
		Kind:         kind,
		Side:         side,
		Health:       stats.Health,
		Vision:       stats.Vision,
		Hit:          stats.Hit,
		Attack:       stats.Attack,
		ActionPoints: 1,
		tile:         unplaced,
	}
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s)", u.Kind, u.ID)
}

func (u *Unit) Capabilities() Capabilities { return u.Kind.Capabilities() }
func (u *Unit) IsMobile() bool             { return u.Kind.Capabilities().Mobile }
func (u *Unit) IsBuilding() bool           { return !u.IsMobile() }
func (u *Unit) Placed() bool               { return u.tile != unplaced }
func (u *Unit) CanAct() bool               { return u.ActionPoints > 0 }
func (u *Unit) Defeated() bool             { return u.Health <= 0 }

func (u *Unit) HasTarget() bool        { return !u.target.IsZero() }
func (u *Unit) Target() Target         { return u.target }
func (u *Unit) TargetUnit() *Unit      { return u.target.Unit }
func (u *Unit) TargetTile() *Tile      { return u.target.Tile }
func (u *Unit) IsHostile(o *Unit) bool { return o != nil && o.Side != u.Side }

// Path returns a copy of the remaining path, next step first. Buildings
// never have one.
func (u *Unit) Path() []*Tile {
	return append([]*Tile(nil), u.path...)
}

// ResetActionPoints sets the per-turn action budget.
func (u *Unit) ResetActionPoints(n int) {
	u.ActionPoints = n
}

// ClearTarget drops the current target. A mobile unit keeps walking its path.
func (u *Unit) ClearTarget() {
	u.target = Target{}
}

// Stop drops the target and any path in progress.
func (u *Unit) Stop() {
	u.target = Target{}
	u.path = nil
}

// Restore sets the target and path directly. Used when rebuilding state
// from a snapshot; path must already be a valid walk from the unit's tile.
func (u *Unit) Restore(target Target, path []*Tile) error {
	if u.IsBuilding() && (len(path) > 0 || target.Tile != nil) {
		return WrapUnitError(u, "restore", ErrBuildingImmovable)
	}
	u.target = target
	u.path = append([]*Tile(nil), path...)
	return nil
}
