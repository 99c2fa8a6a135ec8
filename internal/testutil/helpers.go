package testutil

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// SequentialIDs returns an id source yielding prefix-1, prefix-2, ...
// so that two runs of the same game produce identical unit ids
func SequentialIDs(prefix string) core.IDSource {
	n := 0
	return func() core.UnitID {
		n++
		return core.UnitID(fmt.Sprintf("%s-%d", prefix, n))
	}
}
