package ports

import (
	"context"
	"errors"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	contractsv1 "github.com/The5wapnanil/Chainpoll-risein/contracts/gen/events/v1"
)

// PollRepository is the durable execution log of the ledger. Every mutating
// method is atomic: it either applies the full transition and returns the
// resulting poll snapshot, or fails with a domain error and no state change.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll entities.Poll) (uint64, error)
	GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error)
	CastVote(ctx context.Context, pollID uint64, optionIndex int, voter string) (entities.Poll, error)
	ClosePoll(ctx context.Context, pollID uint64, caller string) (entities.Poll, error)
	HasVoted(ctx context.Context, pollID uint64, voter string) (bool, error)
	ListPolls(ctx context.Context) ([]entities.Poll, error)
	PollCount(ctx context.Context) (uint64, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope is the canonical wire shape shared with off-ledger consumers.
type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxWriter persists event envelopes alongside ledger state so notifications
// are emitted exactly for successful mutations, never for failed calls.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// ErrOutboxMessageNotFound reports bookkeeping drift between the relay and the
// outbox store. It never surfaces on the public ledger API.
var ErrOutboxMessageNotFound = errors.New("outbox message not found")

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}
