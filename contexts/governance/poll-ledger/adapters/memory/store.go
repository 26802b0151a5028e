package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory ledger: pollCount doubles as the next-id generator,
// and polls holds every poll ever created (ids 1..pollCount, never reused, no
// deletion). Each mutating method is a single critical section, so the
// sum(voteCount) == |votedBy| invariant holds under concurrent callers.
type Store struct {
	mu sync.RWMutex

	pollCount uint64
	polls     map[uint64]*entities.Poll
	outbox    map[string]outboxRecord
}

func NewStore(seed []entities.Poll) *Store {
	store := &Store{
		polls:  make(map[uint64]*entities.Poll, len(seed)),
		outbox: make(map[string]outboxRecord),
	}
	for _, poll := range seed {
		clone := poll.Clone()
		store.polls[clone.ID] = &clone
		if clone.ID > store.pollCount {
			store.pollCount = clone.ID
		}
	}
	return store
}

func (s *Store) CreatePoll(_ context.Context, poll entities.Poll) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollCount++
	clone := poll.Clone()
	clone.ID = s.pollCount
	s.polls[clone.ID] = &clone
	return clone.ID, nil
}

func (s *Store) GetPoll(_ context.Context, pollID uint64) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrInvalidPollID
	}
	return poll.Clone(), nil
}

func (s *Store) CastVote(_ context.Context, pollID uint64, optionIndex int, voter string) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrInvalidPollID
	}
	if err := poll.CastVote(voter, optionIndex); err != nil {
		return entities.Poll{}, err
	}
	return poll.Clone(), nil
}

func (s *Store) ClosePoll(_ context.Context, pollID uint64, caller string) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domainerrors.ErrInvalidPollID
	}
	if err := poll.Close(caller); err != nil {
		return entities.Poll{}, err
	}
	return poll.Clone(), nil
}

func (s *Store) HasVoted(_ context.Context, pollID uint64, voter string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return false, domainerrors.ErrInvalidPollID
	}
	return poll.HasVoted(voter), nil
}

func (s *Store) ListPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Poll, 0, s.pollCount)
	for pollID := uint64(1); pollID <= s.pollCount; pollID++ {
		if poll, ok := s.polls[pollID]; ok {
			items = append(items, poll.Clone())
		}
	}
	return items, nil
}

func (s *Store) PollCount(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pollCount, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := envelope.EventID
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return ports.ErrOutboxMessageNotFound
	}
	row.published = true
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.PollRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
