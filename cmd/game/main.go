package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/mobai/internal/config"
	"github.com/mitchelldurbincs/mobai/internal/game"
	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
	"github.com/mitchelldurbincs/mobai/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
	"github.com/mitchelldurbincs/mobai/internal/game/rules"
	"github.com/mitchelldurbincs/mobai/internal/replay"
)

// botActChance is how often the random bot orders an idle unit
const botActChance = 0.3

func main() {
	configPath := flag.String("config", "", "Path to config file")
	seedFlag := flag.Int64("seed", 0, "Random seed for the bots (0 to use config, then time)")
	maxTurns := flag.Int("turns", -1, "Maximum turns to play (-1 to use config default)")
	verbose := flag.Bool("verbose", false, "Print the board every turn and log every game event")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	if *maxTurns == -1 {
		*maxTurns = cfg.Server.Game.MaxTurns
	}
	if !*verbose {
		*verbose = cfg.Development.VerboseLogging
	}
	seed := *seedFlag
	if seed == 0 {
		seed = cfg.Server.Game.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	setupLogging(cfg.Server.Game.LogLevel, cfg.Server.Game.LogFormat)

	if err := run(context.Background(), cfg, seed, *maxTurns, *verbose); err != nil {
		log.Fatal().Err(err).Msg("Game aborted")
	}
}

func run(ctx context.Context, cfg *config.Config, seed int64, maxTurns int, verbose bool) error {
	store, err := replay.NewStore(replay.Config{
		Type:    replay.StoreType(cfg.Replay.Type),
		BaseDir: cfg.Replay.BaseDir,
	}, log.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewEventBusWithLogger(log.Logger)
	if verbose {
		eventLog := subscribers.NewLoggerSubscriber("game-events", log.Logger, zerolog.DebugLevel)
		eventLog.SetDevMode(true)
		bus.Subscribe(eventLog)
	}

	gameCfg := game.DefaultGameConfig()
	gameCfg.EventBus = bus
	engine, err := game.NewEngine(ctx, gameCfg)
	if err != nil {
		return err
	}

	logger := log.With().Str("game_id", engine.GameID()).Int64("seed", seed).Logger()
	logger.Info().Int("max_turns", maxTurns).Msg("Starting local game")

	bots := map[core.Side]*rules.RandomOrderGenerator{
		core.Side0: rules.NewRandomOrderGenerator(rand.New(rand.NewSource(seed)), botActChance),
		core.Side1: rules.NewRandomOrderGenerator(rand.New(rand.NewSource(seed+1)), botActChance),
	}

	for turn := 0; turn < maxTurns && !engine.IsGameOver(); turn++ {
		if err := engine.BeginTurn(); err != nil {
			return err
		}
		for _, side := range core.Sides {
			raw, err := orders.EncodeCommands(bots[side].Choose(engine.LegalTargets(side)))
			if err != nil {
				return err
			}
			res, err := engine.SubmitOrders(side, raw)
			if err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				logger.Warn().Int("side", int(side)).Int("rejected", len(res.Errors)).Msg("Bot orders rejected")
			}
		}
		if err := engine.EvaluateTurn(); err != nil {
			return err
		}
		if err := replay.Record(ctx, store, engine); err != nil {
			logger.Warn().Err(err).Msg("Failed to record replay frame")
		}

		stats := engine.SideStats()
		logger.Info().
			Int("turn", engine.Turn()).
			Int("side0_units", stats[core.Side0].Units).
			Int("side0_health", stats[core.Side0].TotalHealth).
			Int("side1_units", stats[core.Side1].Units).
			Int("side1_health", stats[core.Side1].TotalHealth).
			Msg("Turn complete")

		if verbose {
			fmt.Printf("After turn %d:\n%s\n", engine.Turn(), engine.Board(core.NoSide))
		}
	}

	if !engine.IsGameOver() {
		logger.Info().Int("turns", engine.Turn()).Msg("Game reached maximum turns")
		return nil
	}
	if winner, ok := engine.Winner(); ok {
		logger.Info().Int("winner", int(winner)).Int("turns", engine.Turn()).Msg("Game over")
	} else {
		logger.Info().Int("turns", engine.Turn()).Msg("Game over without a winner")
	}
	return nil
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}
