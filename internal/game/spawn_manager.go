package game

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
)

// SpawnManager makes forts produce soldiers on schedule
type SpawnManager struct {
	eventBus events.Publisher
	gameID   string
	logger   zerolog.Logger

	interval int
	count    int
	stats    core.Stats
	ids      core.IDSource
}

// NewSpawnManager creates a new spawn manager
func NewSpawnManager(eventBus events.Publisher, gameID string, logger zerolog.Logger,
	interval, count int, stats core.Stats, ids core.IDSource) *SpawnManager {
	return &SpawnManager{
		eventBus: eventBus,
		gameID:   gameID,
		logger:   logger.With().Str("component", "SpawnManager").Logger(),
		interval: interval,
		count:    count,
		stats:    stats,
		ids:      ids,
	}
}

// ProcessTurnSpawns places count soldiers on every fort's tile when turn
// is a multiple of the spawn interval. Forts are visited side 0 first,
// then map order. Returns the number of soldiers created.
func (sm *SpawnManager) ProcessTurnSpawns(g *core.Grid, turn int) (int, error) {
	if turn%sm.interval != 0 || sm.count == 0 {
		return 0, nil
	}

	total := 0
	for _, side := range core.Sides {
		for _, fort := range g.Forts(side) {
			pos, ok := g.PositionOf(fort)
			if !ok {
				return total, core.WrapUnitError(fort, "spawn", core.ErrUnitNotPlaced)
			}

			ids := make([]string, 0, sm.count)
			for i := 0; i < sm.count; i++ {
				soldier := core.NewUnit(sm.ids(), core.KindSoldier, fort.Side, sm.stats)
				if err := g.Place(soldier, pos); err != nil {
					return total, fmt.Errorf("spawning at %s: %w", pos, err)
				}
				ids = append(ids, string(soldier.ID))
			}
			total += len(ids)

			sm.eventBus.Publish(events.NewUnitsSpawnedEvent(sm.gameID, int(side), string(fort.ID), pos, ids, turn))
		}
	}

	sm.logger.Info().
		Int("turn", turn).
		Int("spawned", total).
		Msg("Forts spawned soldiers")
	return total, nil
}
