package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/adapters/memory"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

type capturePublisher struct {
	published []ports.EventEnvelope
	topics    []string
	failOn    string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failOn != "" && event.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	p.topics = append(p.topics, topic)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID string, eventType string, at time.Time) {
	t.Helper()
	err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore(nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendEnvelope(t, store, "evt-1", "poll.created", base)
	appendEnvelope(t, store, "evt-2", "vote.cast", base.Add(time.Second))

	publisher := &capturePublisher{}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		BatchSize: 10,
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	if publisher.published[0].EventID != "evt-1" || publisher.published[1].EventID != "evt-2" {
		t.Fatalf("expected publish in append order, got %+v", publisher.published)
	}
	if publisher.topics[0] != "poll.created" || publisher.topics[1] != "vote.cast" {
		t.Fatalf("expected event type as topic, got %v", publisher.topics)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected all rows marked published, got %d pending", len(pending))
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore(nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendEnvelope(t, store, "evt-1", "poll.created", base)
	appendEnvelope(t, store, "evt-2", "vote.cast", base.Add(time.Second))
	appendEnvelope(t, store, "evt-3", "poll.closed", base.Add(2*time.Second))

	publisher := &capturePublisher{failOn: "evt-2"}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		BatchSize: 10,
	}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay failure")
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published before failure, got %d", len(publisher.published))
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	// evt-2 and evt-3 stay pending for the next cycle.
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending rows after failure, got %d", len(pending))
	}
}

func TestOutboxRelayEmptyBacklog(t *testing.T) {
	relay := OutboxRelay{
		Outbox:    memory.NewStore(nil),
		Publisher: &capturePublisher{},
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run on empty backlog failed: %v", err)
	}
}
