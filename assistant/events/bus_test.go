package events

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := bus.Publish(ctx, StreamingChunk{MessageID: "m", Text: fmt.Sprintf("%d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		ev := <-ch
		chunk, ok := ev.(StreamingChunk)
		if !ok {
			t.Fatalf("event %d has type %T", i, ev)
		}
		if chunk.Text != fmt.Sprintf("%d", i) {
			t.Fatalf("event %d text = %q", i, chunk.Text)
		}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	if err := bus.Publish(context.Background(), Processing{Active: true}); err != nil {
		t.Fatal(err)
	}
	for name, ch := range map[string]<-chan AgentEvent{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if _, ok := ev.(Processing); !ok {
				t.Fatalf("subscriber %s got %T", name, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s got nothing", name)
		}
	}
}

func TestTryPublishDropsWhenFull(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		if !bus.TryPublish(Processing{}) {
			t.Fatalf("drop before buffer full at %d", i)
		}
	}
	if bus.TryPublish(Processing{}) {
		t.Fatal("expected drop on full buffer")
	}
}

func TestPublishHonorsContext(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		bus.TryPublish(Processing{})
	}
	ctx, cancelCtx := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelCtx()
	if err := bus.Publish(ctx, Processing{}); err == nil {
		t.Fatal("expected context error when subscriber buffer stays full")
	}
}

func TestCanceledSubscriberStopsReceiving(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	// Publish must not block on the dead subscription.
	done := make(chan error, 1)
	go func() {
		done <- bus.Publish(context.Background(), Processing{})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("publish blocked on canceled subscription")
	}

	select {
	case ev := <-ch:
		t.Fatalf("canceled subscriber received %T", ev)
	default:
	}
}
