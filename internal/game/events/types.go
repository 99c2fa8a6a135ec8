package events

import "time"

// Event is anything published on the bus. Type is the dotted name
// subscribers filter on, e.g. "unit.moved".
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
}

// BaseEvent carries the fields every event shares
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now(), Game: gameID}
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }

// EventMetadata places an event on the timeline. Side is -1 for events
// that belong to no side.
type EventMetadata struct {
	Side int `json:"side"`
	Turn int `json:"turn"`
}

// EventHandler processes one event
type EventHandler func(Event)

// Subscriber receives the events it is interested in
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher is the write side of the bus. Engine components depend on
// this rather than on *EventBus.
type Publisher interface {
	Publish(Event)
}

var _ Publisher = (*EventBus)(nil)
