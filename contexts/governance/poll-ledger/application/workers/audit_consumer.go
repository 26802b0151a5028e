package workers

import (
	"context"
	"log/slog"

	application "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/application"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

// AuditConsumer subscribes to the three poll notification topics and writes an
// append-only audit line per delivered event. It stands in for off-ledger
// indexers that consume the same stream.
type AuditConsumer struct {
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c AuditConsumer) Start(ctx context.Context) error {
	topics := []string{"poll.created", "vote.cast", "poll.closed"}
	for _, topic := range topics {
		if err := c.Subscriber.Subscribe(ctx, topic, c.ConsumerGroup, c.handle); err != nil {
			return err
		}
	}
	return nil
}

func (c AuditConsumer) handle(_ context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	logger.Info("poll event indexed",
		"event", "poll_event_indexed",
		"module", "governance/poll-ledger",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
		"occurred_at", event.OccurredAt,
	)
	return nil
}
