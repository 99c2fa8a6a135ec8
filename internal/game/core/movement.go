package core

// MoveResult describes what a unit did during the move phase.
type MoveResult struct {
	Unit        *Unit
	From        Coordinate
	To          Coordinate
	Moved       bool
	Arrived     bool
	PathDropped bool
	// DroppedStep is the path step that was no longer adjacent.
	DroppedStep Coordinate
}

// MoveStep advances a mobile unit one tile along its path. A next step
// that is no longer adjacent drops the whole path instead of failing.
// Errors are invariant violations.
func MoveStep(g *Grid, u *Unit) (MoveResult, error) {
	res := MoveResult{Unit: u}
	if !u.IsMobile() {
		if len(u.path) > 0 {
			return res, WrapUnitError(u, "move", ErrBuildingImmovable)
		}
		return res, nil
	}
	if len(u.path) == 0 {
		return res, nil
	}

	current := g.TileOf(u)
	if current == nil {
		return res, WrapUnitError(u, "move", ErrUnitNotPlaced)
	}
	res.From = current.Pos
	next := u.path[0]

	if !g.IsNeighbor(current, next) {
		res.PathDropped = true
		if next != nil {
			res.DroppedStep = next.Pos
		}
		u.path = nil
		return res, nil
	}
	if !g.owns(next) {
		return res, WrapUnitError(u, "move to "+next.String(), ErrTileNotFound)
	}
	if !u.CanAct() {
		return res, nil
	}

	if err := current.Remove(u); err != nil {
		return res, err
	}
	if err := next.Add(u); err != nil {
		return res, err
	}
	u.path = u.path[1:]
	if len(u.path) == 0 {
		u.path = nil
	}
	u.ActionPoints--

	res.Moved = true
	res.To = next.Pos
	if u.path == nil && u.target.Tile == next {
		u.target = Target{}
		res.Arrived = true
	}
	return res, nil
}

// ChaseResult describes what a unit did during the chase phase.
type ChaseResult struct {
	Unit      *Unit
	Target    *Unit
	Repathed  bool
	Cleared   bool
	PathSteps int
}

// ChaseStep keeps a unit on a unit target. A mobile chaser that can still
// see its target re-paths to the target's tile; otherwise the target is
// cleared. Tile targets and idle units are left alone. No action point is
// spent.
func ChaseStep(g *Grid, u *Unit, visible PositionSet) (ChaseResult, error) {
	target := u.TargetUnit()
	res := ChaseResult{Unit: u, Target: target}
	if target == nil {
		return res, nil
	}
	if u.IsMobile() && CanSee(g, visible, target) {
		if err := SetTargetUnit(g, u, target, visible); err != nil {
			return res, err
		}
		res.Repathed = true
		res.PathSteps = len(u.path)
		return res, nil
	}
	u.ClearTarget()
	res.Cleared = true
	return res, nil
}
