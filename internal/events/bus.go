// Package events provides a small typed event bus used for
// cross-component signaling (preference changes, storage writes)
// with guaranteed cleanup: every subscription returns a Close that
// unregisters it, so no handler can fire after its owner tears down.
package events

import (
	"reflect"
	"sync"
)

// ThemeChanged is published when the persisted dark-mode flag
// changes, locally or from another running instance.
type ThemeChanged struct {
	Dark bool
}

// KeyChanged is published by the preference store when a key is
// written or deleted.
type KeyChanged struct {
	Key   string
	Value string
}

// Subscription is a live registration on the bus. Events arrive on C
// until Close is called.
type Subscription struct {
	C <-chan interface{}

	bus    *Bus
	typ    reflect.Type
	id     int
	closed bool
	mu     sync.Mutex
}

// Close unregisters the subscription and closes its channel.
// It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.bus.unsubscribe(s.typ, s.id)
}

// Bus delivers published events to all subscribers of the event's
// concrete type.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[reflect.Type]map[int]chan interface{}
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[reflect.Type]map[int]chan interface{}),
	}
}

// Subscribe registers for events whose concrete type matches the
// prototype (e.g. Subscribe(events.ThemeChanged{})). The subscription
// channel is buffered; slow consumers drop events rather than block
// publishers.
func (b *Bus) Subscribe(prototype interface{}) *Subscription {
	typ := reflect.TypeOf(prototype)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	ch := make(chan interface{}, 16)
	if b.subs[typ] == nil {
		b.subs[typ] = make(map[int]chan interface{})
	}
	b.subs[typ][id] = ch

	return &Subscription{C: ch, bus: b, typ: typ, id: id}
}

// Publish delivers the event to every subscriber of its type.
// Delivery is non-blocking; a full subscriber channel drops the event.
func (b *Bus) Publish(event interface{}) {
	typ := reflect.TypeOf(event)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[typ] {
		select {
		case ch <- event:
		default:
		}
	}
}

// unsubscribe removes a subscription and closes its channel.
func (b *Bus) unsubscribe(typ reflect.Type, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if chans, ok := b.subs[typ]; ok {
		if ch, ok := chans[id]; ok {
			delete(chans, id)
			close(ch)
		}
		if len(chans) == 0 {
			delete(b.subs, typ)
		}
	}
}
