package orders

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
)

// EventPublisher receives command.accepted and command.rejected events
type EventPublisher interface {
	Publish(event interface{})
}

// Rejection is a command the validator refused. Index is the position in
// the submitted batch.
type Rejection struct {
	Index int
	Raw   json.RawMessage
	Err   error
}

func (r Rejection) Error() string { return r.Err.Error() }

func (r Rejection) Unwrap() error { return r.Err }

// Result of validating one side's batch
type Result struct {
	Accepted []Command
	Errors   []Rejection
	// Truncated counts commands dropped from the front of an oversized batch
	Truncated int
}

// Validator turns one side's untrusted command batch into target changes
// on that side's units
type Validator struct {
	logger    zerolog.Logger
	publisher EventPublisher
	gameID    string
	turn      int
}

// NewValidator creates a validator. publisher may be nil.
func NewValidator(logger zerolog.Logger, publisher EventPublisher, gameID string) *Validator {
	return &Validator{
		logger:    logger.With().Str("component", "OrderValidator").Logger(),
		publisher: publisher,
		gameID:    gameID,
	}
}

// SetTurn sets the turn number attached to logs and events
func (v *Validator) SetTurn(turn int) {
	v.turn = turn
}

// Apply validates raw against the state in g and applies every command that
// passes. visible is the fog-of-war of side. Bad commands are collected in
// Result.Errors and never stop the batch; the returned error is reserved
// for invariant violations raised while applying an accepted command.
func (v *Validator) Apply(g *core.Grid, side core.Side, visible core.PositionSet, raw []json.RawMessage) (Result, error) {
	logger := v.logger.With().Int("side", int(side)).Int("turn", v.turn).Logger()
	var res Result

	if !side.Valid() {
		return res, fmt.Errorf("validate orders: %w: %d", core.ErrInvalidSide, side)
	}

	limit := len(g.UnitsOf(side))
	offset := 0
	if len(raw) > limit {
		offset = len(raw) - limit
		res.Truncated = offset
		logger.Debug().
			Int("submitted", len(raw)).
			Int("kept", limit).
			Msg("Truncated oversized command batch")
	}

	index := g.UnitIndex()
	for i, msg := range raw[offset:] {
		pos := offset + i
		cmd, err := v.check(g, side, visible, index, msg)
		if err != nil {
			cerr := newCommandError(pos, cmd, err)
			res.Errors = append(res.Errors, Rejection{Index: pos, Raw: msg, Err: cerr})
			logger.Warn().Err(cerr).Int("index", pos).Msg("Rejected command")
			v.publish(events.NewCommandRejectedEvent(v.gameID, int(side), pos, cerr.Error(), v.turn))
			continue
		}

		if err := apply(g, index, visible, cmd); err != nil {
			return res, fmt.Errorf("apply command %d: %w", pos, err)
		}
		res.Accepted = append(res.Accepted, cmd)
		logger.Debug().Int("index", pos).Str("command", cmd.String()).Msg("Accepted command")
		v.publish(events.NewCommandAcceptedEvent(v.gameID, int(side), pos, string(cmd.UnitID), string(cmd.Action), v.turn))
	}

	logger.Debug().
		Int("accepted", len(res.Accepted)).
		Int("rejected", len(res.Errors)).
		Msg("Validated command batch")
	return res, nil
}

// check runs parse, ownership, target and visibility checks in that order
func (v *Validator) check(g *core.Grid, side core.Side, visible core.PositionSet, index map[core.UnitID]*core.Unit, raw json.RawMessage) (Command, error) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		return cmd, err
	}

	unit, ok := index[cmd.UnitID]
	if !ok {
		return cmd, ErrUnknownUnit
	}
	if unit.Side != side {
		return cmd, ErrNotOwned
	}
	if cmd.Action != ActionTarget {
		return cmd, nil
	}

	if cmd.TargetUnit != nil {
		target, ok := index[*cmd.TargetUnit]
		if !ok {
			return cmd, fmt.Errorf("%w: target %s", ErrUnknownUnit, *cmd.TargetUnit)
		}
		if target.Side == side {
			return cmd, ErrFriendlyTarget
		}
		if !core.CanSee(g, visible, target) {
			return cmd, ErrTargetNotVisible
		}
		return cmd, nil
	}

	if !unit.IsMobile() {
		return cmd, ErrImmobileUnit
	}
	if !g.IsValid(*cmd.TargetPos) {
		return cmd, fmt.Errorf("%w: %s", ErrInvalidPosition, *cmd.TargetPos)
	}
	if !visible.Contains(*cmd.TargetPos) {
		return cmd, ErrTargetNotVisible
	}
	return cmd, nil
}

func apply(g *core.Grid, index map[core.UnitID]*core.Unit, visible core.PositionSet, cmd Command) error {
	unit := index[cmd.UnitID]
	switch cmd.Action {
	case ActionClearTarget:
		unit.ClearTarget()
	case ActionStop:
		unit.Stop()
	case ActionTarget:
		if cmd.TargetUnit != nil {
			return core.SetTargetUnit(g, unit, index[*cmd.TargetUnit], visible)
		}
		tile, err := g.TileAt(*cmd.TargetPos)
		if err != nil {
			return err
		}
		return core.SetTargetTile(g, unit, tile)
	}
	return nil
}

func (v *Validator) publish(event interface{}) {
	if v.publisher != nil {
		v.publisher.Publish(event)
	}
}
