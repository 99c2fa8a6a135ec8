package rules

import (
	"math/rand"

	"github.com/mitchelldurbincs/mobai/internal/game/orders"
)

// RandomOrderGenerator is a baseline bot that gives random legal commands
type RandomOrderGenerator struct {
	rng       *rand.Rand
	actChance float64
}

// NewRandomOrderGenerator creates a bot that orders each unit with
// probability actChance. A seeded rng makes its choices reproducible.
func NewRandomOrderGenerator(rng *rand.Rand, actChance float64) *RandomOrderGenerator {
	return &RandomOrderGenerator{rng: rng, actChance: actChance}
}

// Choose picks at most one command per unit from candidates. Units that
// already have a target are left alone.
func (r *RandomOrderGenerator) Choose(candidates []UnitCandidates) []orders.Command {
	var out []orders.Command
	for _, c := range candidates {
		if len(c.Commands) == 0 || c.Unit.HasTarget() {
			continue
		}
		if r.rng.Float64() >= r.actChance {
			continue
		}
		out = append(out, c.Commands[r.rng.Intn(len(c.Commands))])
	}
	return out
}
