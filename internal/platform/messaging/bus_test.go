package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

func TestBusDeliversToSubscribedTopic(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []ports.EventEnvelope
	done := make(chan struct{}, 1)

	err := bus.Subscribe(ctx, "poll.created", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	event := ports.EventEnvelope{EventID: "evt-1", EventType: "poll.created"}
	if err := bus.Publish(context.Background(), "poll.created", event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0].EventID != "evt-1" {
		t.Fatalf("unexpected delivery: %+v", received)
	}
}

func TestBusIgnoresOtherTopics(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan ports.EventEnvelope, 1)
	err := bus.Subscribe(ctx, "poll.closed", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		delivered <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(context.Background(), "vote.cast", ports.EventEnvelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case event := <-delivered:
		t.Fatalf("unexpected delivery: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Publish(context.Background(), "poll.created", ports.EventEnvelope{EventID: "evt-3"}); err != nil {
		t.Fatalf("publish to empty topic failed: %v", err)
	}
}
