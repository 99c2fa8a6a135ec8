package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
	"github.com/mitchelldurbincs/mobai/internal/game/mapgen"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
	"github.com/mitchelldurbincs/mobai/internal/game/rules"
	"github.com/mitchelldurbincs/mobai/internal/game/states"
)

// EngineInitializer handles the complex initialization of a game engine
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	return &EngineInitializer{
		config: cfg,
		logger: cfg.Logger.With().Str("component", "GameEngine").Logger(),
	}
}

// Initialize creates and initializes a new game engine
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled or timed out during initial phase")
		return nil, ctx.Err()
	default:
	}

	if err := ei.setupDefaults(); err != nil {
		return nil, err
	}

	grid, placements, err := ei.generateMap()
	if err != nil {
		return nil, fmt.Errorf("map generation failed: %w", err)
	}

	engine := ei.createEngine(newGameState(grid, 0))
	engine.updateFogOfWar()

	if err := ei.initializeStateMachine(engine); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	engine.eventBus.Publish(events.NewGameStartedEvent(
		engine.gameID,
		ei.config.Width,
		ei.config.Height,
		len(placements),
	))

	ei.logger.Info().
		Int("width", ei.config.Width).
		Int("height", ei.config.Height).
		Int("buildings", len(placements)).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults fills in missing configuration and rejects unusable values
func (ei *EngineInitializer) setupDefaults() error {
	if ei.config.GameID == "" {
		ei.config.GameID = uuid.NewString()
	}
	ei.logger = ei.logger.With().Str("game_id", ei.config.GameID).Logger()

	if ei.config.Ratio == (core.Ratio{}) {
		ei.config.Ratio = core.DefaultRatio
	}
	if ei.config.ActionPoints == 0 {
		ei.config.ActionPoints = 1
	}
	if ei.config.IDs == nil {
		ei.logger.Debug().Msg("No id source provided, using random unit ids")
		ei.config.IDs = core.NewUnitID
	}
	if ei.config.EventBus == nil {
		ei.config.EventBus = events.NewEventBusWithLogger(ei.config.Logger)
	}

	if ei.config.SpawnInterval <= 0 {
		return fmt.Errorf("spawn interval must be positive, got %d", ei.config.SpawnInterval)
	}
	if ei.config.SpawnCount < 0 {
		return fmt.Errorf("spawn count must be non-negative, got %d", ei.config.SpawnCount)
	}
	if ei.config.ActionPoints < 0 {
		return fmt.Errorf("action points must be non-negative, got %d", ei.config.ActionPoints)
	}
	return nil
}

// generateMap builds the lane grid with its buildings
func (ei *EngineInitializer) generateMap() (*core.Grid, []mapgen.BuildingPlacement, error) {
	mapCfg := mapgen.DefaultMapConfig(ei.config.Width, ei.config.Height)
	mapCfg.Ratio = ei.config.Ratio
	mapCfg.Stats = ei.config.Stats
	return mapgen.NewGenerator(mapCfg, ei.config.IDs).GenerateMap()
}

// createEngine wires the engine components around gs
func (ei *EngineInitializer) createEngine(gs *GameState) *Engine {
	eventBus := ei.config.EventBus

	gameContext := states.NewGameContext(ei.config.GameID, len(core.Sides), ei.logger)
	gameContext.Seated = len(core.Sides)
	gameContext.Turn = gs.Turn

	engine := &Engine{
		gs:           gs,
		config:       ei.config,
		logger:       ei.logger,
		gameID:       ei.config.GameID,
		eventBus:     eventBus,
		stateMachine: states.NewStateMachine(gameContext, eventBus),
		validator:    orders.NewValidator(ei.logger, events.NewEventPublisherAdapter(eventBus), ei.config.GameID),
		winCondition: rules.NewWinConditionChecker(ei.logger),
		legalTargets: rules.NewLegalTargetCalculator(),
	}

	stats := mapgen.MapConfig{Stats: ei.config.Stats}.StatsFor(core.KindSoldier)
	engine.spawnManager = NewSpawnManager(eventBus, ei.config.GameID, ei.logger,
		ei.config.SpawnInterval, ei.config.SpawnCount, stats, ei.config.IDs)
	engine.turnProcessor = NewTurnProcessor(engine)

	return engine
}

// initializeStateMachine walks the lifecycle from the lobby up to PhaseRunning
func (ei *EngineInitializer) initializeStateMachine(engine *Engine) error {
	stateMachine := engine.stateMachine

	if err := stateMachine.TransitionTo(states.PhaseStarting, "Both sides seated"); err != nil {
		ei.logger.Error().Err(err).Msg("Failed to transition to Starting state")
		return err
	}

	if err := stateMachine.TransitionTo(states.PhaseRunning, "Buildings placed"); err != nil {
		ei.logger.Error().Err(err).Msg("Failed to transition to Running state")
		return err
	}

	return nil
}
