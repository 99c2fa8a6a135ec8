package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/events"
)

// TestSubscriber implements the Subscriber interface for testing
type TestSubscriber struct {
	id         string
	events     []events.Event
	interested map[string]bool
}

func NewTestSubscriber(id string, interestedTypes ...string) *TestSubscriber {
	interested := make(map[string]bool)
	for _, t := range interestedTypes {
		interested[t] = true
	}
	return &TestSubscriber{
		id:         id,
		interested: interested,
	}
}

func (ts *TestSubscriber) ID() string {
	return ts.id
}

func (ts *TestSubscriber) HandleEvent(event events.Event) {
	ts.events = append(ts.events, event)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if len(ts.interested) == 0 {
		return true
	}
	return ts.interested[eventType]
}

func TestEventBusBasicFunctionality(t *testing.T) {
	bus := events.NewEventBus()

	subscriber := NewTestSubscriber("test1", events.TypeGameStarted, events.TypeGameEnded)
	bus.Subscribe(subscriber)

	bus.Publish(events.NewGameStartedEvent("game1", 36, 21, 12))

	require.Len(t, subscriber.events, 1)
	assert.Equal(t, events.TypeGameStarted, subscriber.events[0].Type())
	assert.Equal(t, "game1", subscriber.events[0].GameID())

	// not interested
	bus.Publish(events.NewTurnStartedEvent("game1", 1, 0))
	assert.Len(t, subscriber.events, 1)

	bus.Publish(events.NewGameEndedEvent("game1", 0, time.Minute, 42))

	require.Len(t, subscriber.events, 2)
	assert.Equal(t, events.TypeGameEnded, subscriber.events[1].Type())
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := events.NewEventBus()

	subscriber := NewTestSubscriber("test2")
	bus.Subscribe(subscriber)

	bus.Publish(events.NewTurnStartedEvent("game2", 5, 6))
	assert.Len(t, subscriber.events, 1)

	bus.Unsubscribe(subscriber.ID())
	bus.Publish(events.NewTurnEndedEvent("game2", 6, events.TurnSummary{Attacks: 2}, time.Millisecond*100))

	assert.Len(t, subscriber.events, 1)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := events.NewEventBus()

	sub1 := NewTestSubscriber("sub1", events.TypeUnitAttacked)
	sub2 := NewTestSubscriber("sub2", events.TypeUnitAttacked)
	sub3 := NewTestSubscriber("sub3")

	bus.Subscribe(sub1)
	bus.Subscribe(sub2)
	bus.Subscribe(sub3)

	funcCalled := false
	bus.SubscribeFunc(events.TypeUnitAttacked, func(e events.Event) {
		funcCalled = true
	})

	bus.Publish(events.NewUnitAttackedEvent("game4", 0, "s-1", "Soldier", "t-1",
		core.NewCoordinate(10, 10), 1, 99, false, 3))

	assert.Len(t, sub1.events, 1)
	assert.Len(t, sub2.events, 1)
	assert.Len(t, sub3.events, 1)
	assert.True(t, funcCalled)
}

func TestEventBusPanicRecovery(t *testing.T) {
	bus := events.NewEventBus()

	bus.SubscribeFunc(events.TypeUnitDefeated, func(e events.Event) {
		panic("test panic")
	})

	normalSub := NewTestSubscriber("normal")
	bus.Subscribe(normalSub)

	defeated := events.NewUnitDefeatedEvent("game5", 1, "s-9", "Soldier", core.NewCoordinate(0, 3), -2, 10)

	assert.NotPanics(t, func() {
		bus.Publish(defeated)
	})
	assert.Len(t, normalSub.events, 1)
}

func TestEventTimestamps(t *testing.T) {
	startTime := time.Now()

	all := []events.Event{
		events.NewGameStartedEvent("game6", 36, 21, 12),
		events.NewTurnStartedEvent("game6", 1, 0),
		events.NewTurnEndedEvent("game6", 1, events.TurnSummary{}, time.Millisecond*50),
		events.NewUnitsSpawnedEvent("game6", 0, "f-1", core.NewCoordinate(0, 0), []string{"a", "b", "c"}, 0),
		events.NewUnitMovedEvent("game6", 1, "s-1", core.NewCoordinate(1, 0), core.NewCoordinate(2, 0), false, 3),
		events.NewPathDroppedEvent("game6", 1, "s-1", core.NewCoordinate(1, 0), core.NewCoordinate(5, 0), 3),
		events.NewCommandAcceptedEvent("game6", 0, 0, "s-2", "stop", 3),
		events.NewStateTransitionEvent("game6", "Starting", "Running", "buildings placed"),
	}

	for _, event := range all {
		assert.False(t, event.Timestamp().IsZero())
		assert.True(t, event.Timestamp().After(startTime) || event.Timestamp().Equal(startTime))
		assert.True(t, event.Timestamp().Before(time.Now().Add(time.Second)))
		assert.Equal(t, "game6", event.GameID())
	}
}

func TestEventMetadata(t *testing.T) {
	spawned := events.NewUnitsSpawnedEvent("game7", 1, "f-2", core.NewCoordinate(35, 10), []string{"x"}, 20)

	assert.Equal(t, 1, spawned.Metadata.Side)
	assert.Equal(t, 20, spawned.Metadata.Turn)

	started := events.NewTurnStartedEvent("game7", 20, 6)
	assert.Equal(t, -1, started.Metadata.Side)
}

func BenchmarkEventBusPublish(b *testing.B) {
	bus := events.NewEventBus()
	subscriber := NewTestSubscriber("bench")
	bus.Subscribe(subscriber)

	event := events.NewTurnStartedEvent("bench-game", 1, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(event)
	}
}
