package states

import (
	"fmt"
	"slices"
)

// GamePhase is a step of the game lifecycle. A game is born in PhaseLobby
// and ends in PhaseEnded or PhaseError; there is no way back out of either.
type GamePhase int

const (
	// PhaseLobby - sides are being seated
	PhaseLobby GamePhase = iota
	// PhaseStarting - map generated, buildings being placed
	PhaseStarting
	// PhaseRunning - turns are begun, ordered and evaluated
	PhaseRunning
	// PhasePaused - operator hold, no turn operations
	PhasePaused
	// PhaseEnding - at most one side still has units
	PhaseEnding
	PhaseEnded
	// PhaseError - an invariant broke during setup or a turn
	PhaseError
)

var phaseNames = [...]string{
	PhaseLobby:    "Lobby",
	PhaseStarting: "Starting",
	PhaseRunning:  "Running",
	PhasePaused:   "Paused",
	PhaseEnding:   "Ending",
	PhaseEnded:    "Ended",
	PhaseError:    "Error",
}

// next lists the phases reachable from each phase
var next = map[GamePhase][]GamePhase{
	PhaseLobby:    {PhaseStarting, PhaseError},
	PhaseStarting: {PhaseRunning, PhaseError},
	PhaseRunning:  {PhasePaused, PhaseEnding, PhaseError},
	PhasePaused:   {PhaseRunning, PhaseEnding, PhaseError},
	PhaseEnding:   {PhaseEnded, PhaseError},
}

func (p GamePhase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("GamePhase(%d)", int(p))
}

// IsTerminal reports whether no transition leaves p
func (p GamePhase) IsTerminal() bool {
	return len(next[p]) == 0
}

// CanReceiveOrders reports whether turns may be begun, ordered and evaluated
func (p GamePhase) CanReceiveOrders() bool {
	return p == PhaseRunning
}

// CanSnapshot reports whether the game state is consistent enough to persist
func (p GamePhase) CanSnapshot() bool {
	switch p {
	case PhaseRunning, PhasePaused, PhaseEnded:
		return true
	}
	return false
}

// AllowedTransitions returns a copy of the phases reachable from p
func (p GamePhase) AllowedTransitions() []GamePhase {
	return slices.Clone(next[p])
}

func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	return slices.Contains(next[p], target)
}
