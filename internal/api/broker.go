package api

import (
	"sync"

	"visits/internal/app"
)

// ScreenEvent is what stream subscribers receive: a full screen projection
// per state transition.
type ScreenEvent struct {
	Type   string     `json:"type"`
	Screen app.Screen `json:"screen"`
}

// EventBroker fans screen events out to stream subscribers.
type EventBroker interface {
	Subscribe() chan ScreenEvent
	Unsubscribe(ch chan ScreenEvent)
	Publish(evt ScreenEvent)
}

// Broker is the in-memory EventBroker. Slow subscribers drop events rather
// than block the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[chan ScreenEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan ScreenEvent]struct{}{}}
}

func (b *Broker) Subscribe() chan ScreenEvent {
	ch := make(chan ScreenEvent, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan ScreenEvent) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Broker) Publish(evt ScreenEvent) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
