package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// Bus is a broadcast channel for AgentEvents: one publisher side, many
// independent subscribers, bounded buffer per subscriber.
//
// Publish never drops an event: it blocks per subscriber until buffer
// room appears or ctx ends. TryPublish is fire-and-forget and drops the
// event for any subscriber whose buffer is full. For events published
// from one goroutine, delivery order per subscriber matches publish
// order; no order is defined across subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	ch   chan AgentEvent
	done chan struct{}
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]*subscription{}}
}

// Subscribe registers a new observer. The returned cancel func releases
// the subscription; after cancel no further events are delivered. The
// event channel is never closed, so consumers should select on it
// together with their own context.
func (b *Bus) Subscribe() (<-chan AgentEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	sub := &subscription{
		ch:   make(chan AgentEvent, subscriberBuffer),
		done: make(chan struct{}),
	}
	b.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev to every current subscriber, waiting for buffer
// room. It returns early when ctx ends.
func (b *Bus) Publish(ctx context.Context, ev AgentEvent) error {
	for _, sub := range b.snapshot() {
		select {
		case sub.ch <- ev:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// TryPublish delivers ev to every subscriber with buffer room and drops
// it for the rest. It reports whether every subscriber received the
// event.
func (b *Bus) TryPublish(ev AgentEvent) bool {
	delivered := true
	for _, sub := range b.snapshot() {
		select {
		case sub.ch <- ev:
		default:
			delivered = false
		}
	}
	return delivered
}

func (b *Bus) snapshot() []*subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		out = append(out, sub)
	}
	return out
}
