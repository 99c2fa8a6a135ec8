package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
	"github.com/mitchelldurbincs/mobai/internal/game/rules"
	"github.com/mitchelldurbincs/mobai/internal/game/states"
)

var (
	ErrNotRunning      = errors.New("game is not running")
	ErrTurnNotBegun    = errors.New("turn has not been begun")
	ErrTurnInProgress  = errors.New("turn already begun")
	ErrMidTurnSnapshot = errors.New("snapshot requested while a turn is being evaluated")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// GameConfig configures a new engine
type GameConfig struct {
	Width  int
	Height int
	Ratio  core.Ratio

	SpawnInterval int
	SpawnCount    int
	// ActionPoints is the per-turn budget of every unit; zero selects 1
	ActionPoints int
	// Stats overrides base unit stats per kind; missing kinds use core.DefaultStats
	Stats map[core.UnitKind]core.Stats

	GameID string
	Logger zerolog.Logger
	// IDs generates unit ids; nil uses core.NewUnitID
	IDs core.IDSource
	// EventBus lets callers subscribe before game.started is published; nil creates one
	EventBus *events.EventBus
}

// DefaultGameConfig builds an engine config from the loaded configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Width:         MapWidth(),
		Height:        MapHeight(),
		Ratio:         MapRatio(),
		SpawnInterval: SpawnInterval(),
		SpawnCount:    SpawnCount(),
		ActionPoints:  ActionPointsPerTurn(),
		Stats:         UnitStats(),
		Logger:        log.Logger,
	}
}

// Engine runs one lane-battle game. It is not safe for concurrent use; the
// caller serializes BeginTurn, SubmitOrders, EvaluateTurn and Snapshot.
type Engine struct {
	gs     *GameState
	config GameConfig
	logger zerolog.Logger
	gameID string

	eventBus      *events.EventBus
	stateMachine  *states.StateMachine
	validator     *orders.Validator
	winCondition  *rules.WinConditionChecker
	legalTargets  *rules.LegalTargetCalculator
	spawnManager  *SpawnManager
	turnProcessor *TurnProcessor

	turnBegun  bool
	evaluating bool
}

// NewEngine creates a game with buildings placed and the lifecycle in
// PhaseRunning. Turn 0 still has to be begun.
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// BeginTurn spawns scheduled soldiers, resets action points and refreshes
// the fog-of-war. Orders are accepted afterwards.
func (e *Engine) BeginTurn() error {
	if err := e.checkCanAct("begin turn"); err != nil {
		return err
	}
	if e.turnBegun {
		return core.WrapGameStateError(e.gs.Turn, "begin turn", ErrTurnInProgress)
	}

	turnLogger := e.logger.With().Int("turn", e.gs.Turn).Logger()

	spawned, err := e.spawnManager.ProcessTurnSpawns(e.gs.Grid, e.gs.Turn)
	if err != nil {
		return e.fail(core.WrapGameStateError(e.gs.Turn, "spawn", err), "spawn failed")
	}

	for _, u := range e.gs.Grid.Units() {
		u.ResetActionPoints(e.config.ActionPoints)
	}
	e.updateFogOfWar()
	e.validator.SetTurn(e.gs.Turn)
	e.turnBegun = true

	e.eventBus.Publish(events.NewTurnStartedEvent(e.gameID, e.gs.Turn, spawned))
	turnLogger.Debug().Int("spawned", spawned).Msg("Turn begun")
	return nil
}

// SubmitOrders validates and applies one side's raw command batch for the
// current turn. Rejected commands are reported in the result; an error is
// returned only for lifecycle misuse or invariant violations.
func (e *Engine) SubmitOrders(side core.Side, raw []json.RawMessage) (orders.Result, error) {
	if err := e.checkCanAct("submit orders"); err != nil {
		return orders.Result{}, err
	}
	if !e.turnBegun {
		return orders.Result{}, core.WrapGameStateError(e.gs.Turn, "submit orders", ErrTurnNotBegun)
	}
	if !side.Valid() {
		return orders.Result{}, core.WrapGameStateError(e.gs.Turn, "submit orders", core.ErrInvalidSide)
	}

	visible := core.VisibleBy(e.gs.Grid, side)
	e.gs.Fog[side] = visible

	res, err := e.validator.Apply(e.gs.Grid, side, visible, raw)
	if err != nil {
		return res, e.fail(core.WrapGameStateError(e.gs.Turn, "submit orders", err), "order application failed")
	}
	return res, nil
}

// EvaluateTurn resolves the begun turn: attack, move, chase, cleanup. The
// turn counter then advances and the game-over check runs.
func (e *Engine) EvaluateTurn() error {
	if err := e.checkCanAct("evaluate turn"); err != nil {
		return err
	}
	if !e.turnBegun {
		return core.WrapGameStateError(e.gs.Turn, "evaluate turn", ErrTurnNotBegun)
	}

	turn := e.gs.Turn
	turnLogger := e.logger.With().Int("turn", turn).Logger()
	start := time.Now()

	e.evaluating = true
	summary, err := e.turnProcessor.ProcessTurn(turnLogger)
	e.evaluating = false
	if err != nil {
		return e.fail(core.WrapGameStateError(turn, "evaluate turn", err), "turn evaluation failed")
	}

	e.gs.Turn++
	e.turnBegun = false
	e.stateMachine.Context().Turn = e.gs.Turn
	e.updateFogOfWar()

	e.eventBus.Publish(events.NewTurnEndedEvent(e.gameID, turn, summary, time.Since(start)))
	turnLogger.Debug().
		Int("attacks", summary.Attacks).
		Int("moves", summary.Moves).
		Int("defeated", summary.Defeated).
		Msg("Turn evaluated")

	return e.checkGameOver(turnLogger)
}

// checkGameOver ends the game once at most one side has units left
func (e *Engine) checkGameOver(logger zerolog.Logger) error {
	over, winner, hasWinner := e.winCondition.CheckGameOver(e.gs.Grid.UnitCounts())
	if !over {
		return nil
	}

	e.gs.Finished = true
	e.gs.Winner = winner
	e.gs.HasWinner = hasWinner

	gameCtx := e.stateMachine.Context()
	gameCtx.Finished = true
	gameCtx.Winner = int(winner)

	if err := e.stateMachine.TransitionTo(states.PhaseEnding, "at most one side has units"); err != nil {
		return err
	}
	if err := e.stateMachine.TransitionTo(states.PhaseEnded, "game over"); err != nil {
		return err
	}

	e.eventBus.Publish(events.NewGameEndedEvent(e.gameID, int(winner), e.stateMachine.PlayTime(), e.gs.Turn))
	logger.Info().
		Int("winner", int(winner)).
		Bool("has_winner", hasWinner).
		Msg("Game over")
	return nil
}

// checkCanAct guards turn operations: the game must be running and not over
func (e *Engine) checkCanAct(op string) error {
	if e.gs.Finished {
		return core.WrapGameStateError(e.gs.Turn, op, core.ErrGameOver)
	}
	phase := e.stateMachine.CurrentPhase()
	if !phase.CanReceiveOrders() {
		e.logger.Warn().
			Str("current_phase", phase.String()).
			Str("operation", op).
			Int("turn", e.gs.Turn).
			Msg("Operation attempted in phase that cannot receive orders")
		return core.WrapGameStateError(e.gs.Turn, op, fmt.Errorf("%w: phase %s", ErrNotRunning, phase))
	}
	return nil
}

// fail logs an invariant violation and moves the lifecycle to PhaseError
func (e *Engine) fail(err error, reason string) error {
	e.logger.Error().Err(err).Int("turn", e.gs.Turn).Msg(reason)
	if tErr := e.stateMachine.Fail(err, reason); tErr != nil {
		e.logger.Error().Err(tErr).Msg("Failed to enter error state")
	}
	return err
}

// Pause suspends a running game
func (e *Engine) Pause(reason string) error {
	return e.stateMachine.TransitionTo(states.PhasePaused, reason)
}

// Resume continues a paused game
func (e *Engine) Resume(reason string) error {
	return e.stateMachine.TransitionTo(states.PhaseRunning, reason)
}

// Public accessors
func (e *Engine) GameID() string             { return e.gameID }
func (e *Engine) Turn() int                  { return e.gs.Turn }
func (e *Engine) Grid() *core.Grid           { return e.gs.Grid }
func (e *Engine) IsGameOver() bool           { return e.gs.Finished }
func (e *Engine) TurnBegun() bool            { return e.turnBegun }
func (e *Engine) Phase() states.GamePhase    { return e.stateMachine.CurrentPhase() }
func (e *Engine) EventBus() *events.EventBus { return e.eventBus }

// Winner returns the winning side once the game is over
func (e *Engine) Winner() (core.Side, bool) {
	if !e.gs.Finished {
		return core.NoSide, false
	}
	return e.gs.Winner, e.gs.HasWinner
}

// LegalTargets lists commands side could give its units right now
func (e *Engine) LegalTargets(side core.Side) []rules.UnitCandidates {
	return e.legalTargets.TargetCandidates(e.gs.Grid, side, core.VisibleBy(e.gs.Grid, side))
}
