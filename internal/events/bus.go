package events

import (
	"github.com/kelindar/event"
)

// Publisher is the publishing half of the bus.
type Publisher interface {
	Publish(ev Event)
}

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(FrameReportEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case FrameReportEvent:
		event.Publish(b.dispatcher, e)
	case ScalerChangedEvent:
		event.Publish(b.dispatcher, e)
	case IdleStateChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type selects the events it receives.
// Returns an unsubscribe function; unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e FrameReportEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(FrameReportEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ScalerChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(IdleStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
