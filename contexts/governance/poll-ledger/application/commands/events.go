package commands

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

const (
	EventPollCreated = "poll.created"
	EventVoteCast    = "vote.cast"
	EventPollClosed  = "poll.closed"
)

func newPollEnvelope(
	eventID string,
	eventType string,
	pollID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by poll id so poll-scoped consumers observe
	// mutations in ledger order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "poll-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "poll_id",
		PartitionKey:     strconv.FormatUint(pollID, 10),
		Data:             payload,
	}, nil
}
