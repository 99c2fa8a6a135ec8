package events

import (
	"time"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted     = "game.started"
	TypeGameEnded       = "game.ended"
	TypeTurnStarted     = "turn.started"
	TypeTurnEnded       = "turn.ended"
	TypeUnitsSpawned    = "units.spawned"
	TypeUnitAttacked    = "unit.attacked"
	TypeUnitMoved       = "unit.moved"
	TypePathDropped     = "unit.path_dropped"
	TypeUnitDefeated    = "unit.defeated"
	TypeCommandAccepted = "command.accepted"
	TypeCommandRejected = "command.rejected"
	TypeStateTransition = "state.transition"
)

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	MapWidth  int
	MapHeight int
	Buildings int
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, width, height, buildings int) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		MapWidth:  width,
		MapHeight: height,
		Buildings: buildings,
	}
}

// GameEndedEvent is published once the game is finished. Winner is -1
// when no side won.
type GameEndedEvent struct {
	BaseEvent
	Winner    int
	Duration  time.Duration
	FinalTurn int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner int, duration time.Duration, finalTurn int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		Duration:  duration,
		FinalTurn: finalTurn,
	}
}

// TurnStartedEvent is published when a turn opens for orders
type TurnStartedEvent struct {
	BaseEvent
	Metadata   EventMetadata
	TurnNumber int
	Spawned    int
}

// NewTurnStartedEvent creates a new TurnStartedEvent
func NewTurnStartedEvent(gameID string, turn, spawned int) *TurnStartedEvent {
	return &TurnStartedEvent{
		BaseEvent:  newBase(TypeTurnStarted, gameID),
		Metadata:   EventMetadata{Side: -1, Turn: turn},
		TurnNumber: turn,
		Spawned:    spawned,
	}
}

// TurnSummary counts what happened during one evaluated turn
type TurnSummary struct {
	Attacks      int
	Moves        int
	PathsDropped int
	Repaths      int
	Defeated     int
}

// TurnEndedEvent is published after a turn has been evaluated
type TurnEndedEvent struct {
	BaseEvent
	Metadata      EventMetadata
	TurnNumber    int
	Summary       TurnSummary
	ProcessedTime time.Duration
}

// NewTurnEndedEvent creates a new TurnEndedEvent
func NewTurnEndedEvent(gameID string, turn int, summary TurnSummary, processedTime time.Duration) *TurnEndedEvent {
	return &TurnEndedEvent{
		BaseEvent:     newBase(TypeTurnEnded, gameID),
		Metadata:      EventMetadata{Side: -1, Turn: turn},
		TurnNumber:    turn,
		Summary:       summary,
		ProcessedTime: processedTime,
	}
}

// UnitsSpawnedEvent is published when a fort produces soldiers
type UnitsSpawnedEvent struct {
	BaseEvent
	Metadata EventMetadata
	FortID   string
	Location core.Coordinate
	UnitIDs  []string
}

// NewUnitsSpawnedEvent creates a new UnitsSpawnedEvent
func NewUnitsSpawnedEvent(gameID string, side int, fortID string, location core.Coordinate, unitIDs []string, turn int) *UnitsSpawnedEvent {
	return &UnitsSpawnedEvent{
		BaseEvent: newBase(TypeUnitsSpawned, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		FortID:    fortID,
		Location:  location,
		UnitIDs:   unitIDs,
	}
}

// UnitAttackedEvent is published for every strike in the attack phase
type UnitAttackedEvent struct {
	BaseEvent
	Metadata     EventMetadata
	AttackerID   string
	AttackerKind string
	TargetID     string
	Location     core.Coordinate
	Damage       int
	TargetHealth int
	AutoTargeted bool
}

// NewUnitAttackedEvent creates a new UnitAttackedEvent
func NewUnitAttackedEvent(gameID string, side int, attackerID, attackerKind, targetID string, location core.Coordinate,
	damage, targetHealth int, autoTargeted bool, turn int) *UnitAttackedEvent {
	return &UnitAttackedEvent{
		BaseEvent:    newBase(TypeUnitAttacked, gameID),
		Metadata:     EventMetadata{Side: side, Turn: turn},
		AttackerID:   attackerID,
		AttackerKind: attackerKind,
		TargetID:     targetID,
		Location:     location,
		Damage:       damage,
		TargetHealth: targetHealth,
		AutoTargeted: autoTargeted,
	}
}

// UnitMovedEvent is published when a unit steps to the next tile of its path
type UnitMovedEvent struct {
	BaseEvent
	Metadata EventMetadata
	UnitID   string
	From     core.Coordinate
	To       core.Coordinate
	Arrived  bool
}

// NewUnitMovedEvent creates a new UnitMovedEvent
func NewUnitMovedEvent(gameID string, side int, unitID string, from, to core.Coordinate, arrived bool, turn int) *UnitMovedEvent {
	return &UnitMovedEvent{
		BaseEvent: newBase(TypeUnitMoved, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		UnitID:    unitID,
		From:      from,
		To:        to,
		Arrived:   arrived,
	}
}

// PathDroppedEvent is published when a unit discards a path whose next
// step is no longer adjacent
type PathDroppedEvent struct {
	BaseEvent
	Metadata EventMetadata
	UnitID   string
	Location core.Coordinate
	NextStep core.Coordinate
}

// NewPathDroppedEvent creates a new PathDroppedEvent
func NewPathDroppedEvent(gameID string, side int, unitID string, location, nextStep core.Coordinate, turn int) *PathDroppedEvent {
	return &PathDroppedEvent{
		BaseEvent: newBase(TypePathDropped, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		UnitID:    unitID,
		Location:  location,
		NextStep:  nextStep,
	}
}

// UnitDefeatedEvent is published when cleanup removes a unit
type UnitDefeatedEvent struct {
	BaseEvent
	Metadata EventMetadata
	UnitID   string
	Kind     string
	Location core.Coordinate
	Health   int
}

// NewUnitDefeatedEvent creates a new UnitDefeatedEvent
func NewUnitDefeatedEvent(gameID string, side int, unitID, kind string, location core.Coordinate, health, turn int) *UnitDefeatedEvent {
	return &UnitDefeatedEvent{
		BaseEvent: newBase(TypeUnitDefeated, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		UnitID:    unitID,
		Kind:      kind,
		Location:  location,
		Health:    health,
	}
}

// CommandAcceptedEvent is published for each command applied to a unit
type CommandAcceptedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Index    int
	UnitID   string
	Action   string
}

// NewCommandAcceptedEvent creates a new CommandAcceptedEvent
func NewCommandAcceptedEvent(gameID string, side, index int, unitID, action string, turn int) *CommandAcceptedEvent {
	return &CommandAcceptedEvent{
		BaseEvent: newBase(TypeCommandAccepted, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		Index:     index,
		UnitID:    unitID,
		Action:    action,
	}
}

// CommandRejectedEvent is published for each command the validator refused
type CommandRejectedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Index    int
	Reason   string
}

// NewCommandRejectedEvent creates a new CommandRejectedEvent
func NewCommandRejectedEvent(gameID string, side, index int, reason string, turn int) *CommandRejectedEvent {
	return &CommandRejectedEvent{
		BaseEvent: newBase(TypeCommandRejected, gameID),
		Metadata:  EventMetadata{Side: side, Turn: turn},
		Index:     index,
		Reason:    reason,
	}
}

// StateTransitionEvent is published when the game state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
