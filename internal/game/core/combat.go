package core

// AttackResult describes what a unit did during the attack phase.
type AttackResult struct {
	Attacker     *Unit
	Target       *Unit
	AutoTargeted bool
	Attacked     bool
	Damage       int
	TargetHealth int
}

// AttackStep runs the attack phase for u. Buildings without a target pick
// the first hittable enemy (tiles row-major, then occupant order). Any unit
// with a hittable unit target and an action point then strikes once.
// The bool reports whether anything happened.
func AttackStep(g *Grid, u *Unit) (AttackResult, bool) {
	res := AttackResult{Attacker: u}

	if u.Capabilities().AutoTargets && !u.HasTarget() && u.CanAct() {
		if candidates := HittableUnits(g, u); len(candidates) > 0 {
			u.target = Target{Unit: candidates[0]}
			res.AutoTargeted = true
		}
	}

	target := u.TargetUnit()
	res.Target = target
	if target != nil && CanHit(g, u, target) && u.CanAct() {
		target.Health -= u.Attack
		u.ActionPoints--
		res.Attacked = true
		res.Damage = u.Attack
		res.TargetHealth = target.Health
	}
	return res, res.Attacked || res.AutoTargeted
}
