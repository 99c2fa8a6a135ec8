package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	received := false
	var receivedEvent Event

	bus.SubscribeFunc(TypeGameStarted, func(e Event) {
		received = true
		receivedEvent = e
	})

	bus.Publish(NewGameStartedEvent("test-game", 36, 21, 12))

	assert.True(t, received, "Event handler should have been called")
	require.NotNil(t, receivedEvent)
	assert.Equal(t, TypeGameStarted, receivedEvent.Type())
	assert.Equal(t, "test-game", receivedEvent.GameID())
}

func TestEventBus_FuncHandlerIDsAreUnique(t *testing.T) {
	bus := NewEventBus()

	ids := map[string]bool{}
	for i := 0; i < 20; i++ {
		id := bus.SubscribeFunc(TypeTurnStarted, func(Event) {})
		assert.False(t, ids[id], "duplicate handler id %s", id)
		ids[id] = true
	}
	assert.Equal(t, 20, bus.GetFuncHandlerCount(TypeTurnStarted))
}

func TestEventBus_UnsubscribeFuncHandler(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	id := bus.SubscribeFunc(TypeTurnEnded, func(Event) { calls++ })
	bus.Publish(NewTurnEndedEvent("g", 1, TurnSummary{}, time.Millisecond))
	require.Equal(t, 1, calls)

	bus.Unsubscribe(id)
	bus.Publish(NewTurnEndedEvent("g", 2, TurnSummary{}, time.Millisecond))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.GetFuncHandlerCount(TypeTurnEnded))
	assert.Empty(t, bus.HandledTypes())
}

type orderedSubscriber struct {
	id  string
	log *[]string
}

func (s *orderedSubscriber) ID() string { return s.id }

func (s *orderedSubscriber) HandleEvent(Event) { *s.log = append(*s.log, s.id) }

func (s *orderedSubscriber) InterestedIn(string) bool { return true }

func TestEventBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var log []string

	for _, id := range []string{"c", "a", "b"} {
		bus.Subscribe(&orderedSubscriber{id: id, log: &log})
	}
	bus.SubscribeFunc(TypeUnitMoved, func(Event) { log = append(log, "func") })

	bus.Publish(&UnitMovedEvent{BaseEvent: newBase(TypeUnitMoved, "g")})

	assert.Equal(t, []string{"c", "a", "b", "func"}, log)
	assert.Equal(t, 3, bus.GetSubscriberCount())
}

func TestEventPublisherAdapter(t *testing.T) {
	bus := NewEventBus()
	var got []Event
	bus.SubscribeFunc(TypeCommandRejected, func(e Event) { got = append(got, e) })

	adapter := NewEventPublisherAdapter(bus)
	adapter.Publish(NewCommandRejectedEvent("g", 0, 2, "unknown unit", 4))
	adapter.Publish("not an event")

	require.Len(t, got, 1)
	rejected, ok := got[0].(*CommandRejectedEvent)
	require.True(t, ok)
	assert.Equal(t, 2, rejected.Index)
	assert.Equal(t, 4, rejected.Metadata.Turn)
}
