package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/mobai/internal/game/events"
)

const maxHistory = 256

// Transition is one entry of the lifecycle history
type Transition struct {
	From   GamePhase
	To     GamePhase
	At     time.Time
	Reason string
}

// StateMachine moves a game through its phases, checking the transition
// table and the entry guards, and publishes every move on the event bus.
type StateMachine struct {
	mu        sync.RWMutex
	phase     GamePhase
	ctx       *GameContext
	history   []Transition
	publisher events.Publisher
	now       func() time.Time
}

// NewStateMachine creates a machine in PhaseLobby. publisher may be nil.
func NewStateMachine(ctx *GameContext, publisher events.Publisher) *StateMachine {
	return &StateMachine{
		phase:     PhaseLobby,
		ctx:       ctx,
		publisher: publisher,
		now:       time.Now,
	}
}

func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase
}

// Context returns the shared game context. Callers mutate it only while
// no transition is running, which the engine's single owner guarantees.
func (sm *StateMachine) Context() *GameContext {
	return sm.ctx
}

// History returns a copy of the most recent transitions, oldest first
func (sm *StateMachine) History() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]Transition, len(sm.history))
	copy(out, sm.history)
	return out
}

// PlayTime is the running time of the game so far, pauses excluded
func (sm *StateMachine) PlayTime() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.ctx.PlayTime(sm.now())
}

// TransitionTo moves to target if the table allows it and its guard passes
func (sm *StateMachine) TransitionTo(target GamePhase, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.transitionLocked(target, reason)
}

// Fail records cause and moves to PhaseError. The recorded cause is left
// untouched when the move is not allowed.
func (sm *StateMachine) Fail(cause error, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	prev := sm.ctx.Error
	sm.ctx.Error = cause
	if err := sm.transitionLocked(PhaseError, reason); err != nil {
		sm.ctx.Error = prev
		return err
	}
	return nil
}

func (sm *StateMachine) transitionLocked(target GamePhase, reason string) error {
	from := sm.phase
	if !from.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, target)
	}
	if err := checkEnter(target, sm.ctx); err != nil {
		return fmt.Errorf("enter %s: %w", target, err)
	}

	now := sm.now()
	sm.tick(from, target, now)
	sm.phase = target

	sm.history = append(sm.history, Transition{From: from, To: target, At: now, Reason: reason})
	if len(sm.history) > maxHistory {
		sm.history = sm.history[len(sm.history)-maxHistory:]
	}

	if sm.publisher != nil {
		sm.publisher.Publish(events.NewStateTransitionEvent(sm.ctx.GameID, from.String(), target.String(), reason))
	}
	sm.logTransition(from, target, reason, now)
	return nil
}

// tick keeps the play clock: it starts on the first PhaseRunning and
// stands still while paused
func (sm *StateMachine) tick(from, to GamePhase, now time.Time) {
	gc := sm.ctx
	if from == PhasePaused && !gc.pausedAt.IsZero() {
		gc.paused += now.Sub(gc.pausedAt)
		gc.pausedAt = time.Time{}
	}
	switch to {
	case PhaseRunning:
		if gc.StartedAt.IsZero() {
			gc.StartedAt = now
		}
	case PhasePaused:
		gc.pausedAt = now
	}
}

func (sm *StateMachine) logTransition(from, to GamePhase, reason string, now time.Time) {
	gc := sm.ctx
	switch to {
	case PhaseError:
		gc.Logger.Error().
			Err(gc.Error).
			Int("turn", gc.Turn).
			Str("from_phase", from.String()).
			Str("reason", reason).
			Msg("Game entered error phase")
	case PhaseEnded:
		gc.Logger.Info().
			Int("winner", gc.Winner).
			Int("final_turn", gc.Turn).
			Dur("play_time", gc.PlayTime(now)).
			Msg("Game ended")
	default:
		gc.Logger.Info().
			Str("from_phase", from.String()).
			Str("to_phase", to.String()).
			Str("reason", reason).
			Msg("Phase transition")
	}
}
