package game

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
)

// TurnProcessor resolves one turn phase by phase across all units: every
// unit attacks, then every unit moves, then every unit chases, then cleanup
// runs once. Each phase iterates a unit list taken at the start of that
// phase, tiles row-major then occupant insertion order.
type TurnProcessor struct {
	engine *Engine
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{engine: engine}
}

// ProcessTurn executes the four phases of the current turn. Any error is
// an invariant violation and leaves the turn partially applied.
func (tp *TurnProcessor) ProcessTurn(turnLogger zerolog.Logger) (events.TurnSummary, error) {
	var summary events.TurnSummary
	logger := turnLogger.With().Str("component", "TurnProcessor").Logger()

	tp.attackPhase(logger, &summary)

	if err := tp.movePhase(logger, &summary); err != nil {
		return summary, err
	}

	if err := tp.chasePhase(logger, &summary); err != nil {
		return summary, err
	}

	tp.cleanup(logger, &summary)
	return summary, nil
}

func (tp *TurnProcessor) attackPhase(logger zerolog.Logger, summary *events.TurnSummary) {
	g := tp.engine.gs.Grid
	turn := tp.engine.gs.Turn
	units := g.Units()
	logger.Debug().Int("units", len(units)).Msg("Attack phase")

	for _, u := range units {
		res, acted := core.AttackStep(g, u)
		if !acted {
			continue
		}
		if res.AutoTargeted {
			logger.Debug().
				Str("unit_id", string(u.ID)).
				Str("target_id", string(res.Target.ID)).
				Msg("Building acquired target")
		}
		if !res.Attacked {
			continue
		}
		summary.Attacks++
		pos, _ := g.PositionOf(res.Target)
		tp.engine.eventBus.Publish(events.NewUnitAttackedEvent(
			tp.engine.gameID, int(u.Side), string(u.ID), u.Kind.String(), string(res.Target.ID),
			pos, res.Damage, res.TargetHealth, res.AutoTargeted, turn,
		))
	}
}

func (tp *TurnProcessor) movePhase(logger zerolog.Logger, summary *events.TurnSummary) error {
	g := tp.engine.gs.Grid
	turn := tp.engine.gs.Turn
	units := g.Units()
	logger.Debug().Int("units", len(units)).Msg("Move phase")

	for _, u := range units {
		res, err := core.MoveStep(g, u)
		if err != nil {
			return err
		}
		switch {
		case res.PathDropped:
			summary.PathsDropped++
			logger.Warn().
				Str("unit_id", string(u.ID)).
				Stringer("at", res.From).
				Stringer("next_step", res.DroppedStep).
				Msg("Next path step not adjacent, path dropped")
			tp.engine.eventBus.Publish(events.NewPathDroppedEvent(
				tp.engine.gameID, int(u.Side), string(u.ID), res.From, res.DroppedStep, turn,
			))
		case res.Moved:
			summary.Moves++
			tp.engine.eventBus.Publish(events.NewUnitMovedEvent(
				tp.engine.gameID, int(u.Side), string(u.ID), res.From, res.To, res.Arrived, turn,
			))
		}
	}
	return nil
}

func (tp *TurnProcessor) chasePhase(logger zerolog.Logger, summary *events.TurnSummary) error {
	g := tp.engine.gs.Grid
	fog := fogSnapshot(g)
	units := g.Units()
	logger.Debug().Int("units", len(units)).Msg("Chase phase")

	for _, u := range units {
		res, err := core.ChaseStep(g, u, fog[u.Side])
		if err != nil {
			return err
		}
		if res.Repathed {
			summary.Repaths++
		}
		if res.Cleared {
			logger.Debug().
				Str("unit_id", string(u.ID)).
				Str("target_id", string(res.Target.ID)).
				Msg("Target lost, cleared")
		}
	}
	return nil
}

// cleanup removes every unit with health <= 0 and stops survivors that
// were targeting one of them
func (tp *TurnProcessor) cleanup(logger zerolog.Logger, summary *events.TurnSummary) {
	g := tp.engine.gs.Grid
	turn := tp.engine.gs.Turn

	defeated := make(map[*core.Unit]struct{})
	for _, tile := range g.Tiles() {
		for _, u := range tile.PurgeDefeated() {
			defeated[u] = struct{}{}
			summary.Defeated++
			tp.engine.eventBus.Publish(events.NewUnitDefeatedEvent(
				tp.engine.gameID, int(u.Side), string(u.ID), u.Kind.String(), tile.Pos, u.Health, turn,
			))
		}
	}
	if len(defeated) == 0 {
		return
	}

	for _, u := range g.Units() {
		if _, stale := defeated[u.TargetUnit()]; stale {
			u.Stop()
		}
	}
	logger.Debug().Int("defeated", len(defeated)).Msg("Cleanup removed defeated units")
}
