package events

import "github.com/kelindar/event"

// SubscribeToChannel bridges callback subscriptions to a channel for
// consumers that run their own select loop. Events are dropped when the
// channel is full so a slow consumer never stalls the publisher.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- T) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
