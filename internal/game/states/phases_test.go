package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allPhases = []GamePhase{
	PhaseLobby, PhaseStarting, PhaseRunning, PhasePaused, PhaseEnding, PhaseEnded, PhaseError,
}

func TestGamePhase_String(t *testing.T) {
	assert.Equal(t, "Lobby", PhaseLobby.String())
	assert.Equal(t, "Running", PhaseRunning.String())
	assert.Equal(t, "Error", PhaseError.String())
	assert.Equal(t, "GamePhase(42)", GamePhase(42).String())
	assert.Equal(t, "GamePhase(-1)", GamePhase(-1).String())
}

func TestGamePhase_Predicates(t *testing.T) {
	tests := []struct {
		phase    GamePhase
		terminal bool
		orders   bool
		snapshot bool
	}{
		{PhaseLobby, false, false, false},
		{PhaseStarting, false, false, false},
		{PhaseRunning, false, true, true},
		{PhasePaused, false, false, true},
		{PhaseEnding, false, false, false},
		{PhaseEnded, true, false, true},
		{PhaseError, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.phase.IsTerminal())
			assert.Equal(t, tt.orders, tt.phase.CanReceiveOrders())
			assert.Equal(t, tt.snapshot, tt.phase.CanSnapshot())
		})
	}
}

func TestGamePhase_TransitionTable(t *testing.T) {
	tests := []struct {
		from    GamePhase
		allowed []GamePhase
	}{
		{PhaseLobby, []GamePhase{PhaseStarting, PhaseError}},
		{PhaseStarting, []GamePhase{PhaseRunning, PhaseError}},
		{PhaseRunning, []GamePhase{PhasePaused, PhaseEnding, PhaseError}},
		{PhasePaused, []GamePhase{PhaseRunning, PhaseEnding, PhaseError}},
		{PhaseEnding, []GamePhase{PhaseEnded, PhaseError}},
		{PhaseEnded, nil},
		{PhaseError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.ElementsMatch(t, tt.allowed, tt.from.AllowedTransitions())
			for _, target := range allPhases {
				assert.Equal(t, contains(tt.allowed, target), tt.from.CanTransitionTo(target),
					"%s -> %s", tt.from, target)
			}
		})
	}
}

func TestGamePhase_AllowedTransitionsIsACopy(t *testing.T) {
	allowed := PhaseRunning.AllowedTransitions()
	allowed[0] = PhaseLobby
	assert.False(t, PhaseRunning.CanTransitionTo(PhaseLobby))
}

func contains(phases []GamePhase, p GamePhase) bool {
	for _, q := range phases {
		if q == p {
			return true
		}
	}
	return false
}
