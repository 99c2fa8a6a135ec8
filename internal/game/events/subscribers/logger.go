package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/mobai/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a subscriber logging at logLevel. Levels
// outside debug..error fall back to info.
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	if logLevel < zerolog.DebugLevel || logLevel > zerolog.ErrorLevel {
		logLevel = zerolog.InfoLevel
	}
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	logEvent := eventLogger.WithLevel(ls.logLevel)

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("map_width", e.MapWidth).
			Int("map_height", e.MapHeight).
			Int("buildings", e.Buildings)

	case *events.GameEndedEvent:
		logEvent.
			Int("winner", e.Winner).
			Dur("duration", e.Duration).
			Int("final_turn", e.FinalTurn)

	case *events.TurnStartedEvent:
		logEvent.
			Int("turn", e.TurnNumber).
			Int("spawned", e.Spawned)

	case *events.TurnEndedEvent:
		logEvent.
			Int("turn", e.TurnNumber).
			Int("attacks", e.Summary.Attacks).
			Int("moves", e.Summary.Moves).
			Int("paths_dropped", e.Summary.PathsDropped).
			Int("repaths", e.Summary.Repaths).
			Int("defeated", e.Summary.Defeated).
			Dur("process_time", e.ProcessedTime)

	case *events.UnitsSpawnedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Str("fort_id", e.FortID).
			Int("x", e.Location.X).
			Int("y", e.Location.Y).
			Int("count", len(e.UnitIDs))

	case *events.UnitAttackedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Str("attacker_id", e.AttackerID).
			Str("attacker_kind", e.AttackerKind).
			Str("target_id", e.TargetID).
			Int("x", e.Location.X).
			Int("y", e.Location.Y).
			Int("damage", e.Damage).
			Int("target_health", e.TargetHealth).
			Bool("auto_targeted", e.AutoTargeted)

	case *events.UnitMovedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Str("unit_id", e.UnitID).
			Int("from_x", e.From.X).
			Int("from_y", e.From.Y).
			Int("to_x", e.To.X).
			Int("to_y", e.To.Y).
			Bool("arrived", e.Arrived)

	case *events.PathDroppedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Str("unit_id", e.UnitID).
			Int("x", e.Location.X).
			Int("y", e.Location.Y).
			Int("next_x", e.NextStep.X).
			Int("next_y", e.NextStep.Y)

	case *events.UnitDefeatedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Str("unit_id", e.UnitID).
			Str("kind", e.Kind).
			Int("x", e.Location.X).
			Int("y", e.Location.Y).
			Int("health", e.Health)

	case *events.CommandAcceptedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Int("index", e.Index).
			Str("unit_id", e.UnitID).
			Str("action", e.Action)

	case *events.CommandRejectedEvent:
		logEvent.
			Int("side", e.Metadata.Side).
			Int("index", e.Index).
			Str("reason", e.Reason)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from", e.FromPhase).
			Str("to", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}
