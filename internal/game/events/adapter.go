package events

// EventPublisherAdapter lets packages that publish untyped events (the
// order validator) feed the bus without importing it
type EventPublisherAdapter struct {
	bus Publisher
}

// NewEventPublisherAdapter creates a new adapter
func NewEventPublisherAdapter(bus Publisher) *EventPublisherAdapter {
	return &EventPublisherAdapter{bus: bus}
}

// Publish forwards Event values and drops anything else
func (a *EventPublisherAdapter) Publish(event interface{}) {
	if e, ok := event.(Event); ok {
		a.bus.Publish(e)
	}
}
