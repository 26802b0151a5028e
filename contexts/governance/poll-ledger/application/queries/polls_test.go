package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/adapters/memory"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
)

func seededQueries(t *testing.T) (PollQueries, uint64) {
	t.Helper()
	store := memory.NewStore(nil)
	poll, err := entities.NewPoll("best season?", []string{"summer", "winter", "autumn"}, "alice", time.Now().UTC())
	if err != nil {
		t.Fatalf("new poll failed: %v", err)
	}
	pollID, err := store.CreatePoll(context.Background(), poll)
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if _, err := store.CastVote(context.Background(), pollID, 1, "bob"); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	return PollQueries{Polls: store}, pollID
}

func TestPollInfo(t *testing.T) {
	queries, pollID := seededQueries(t)

	info, err := queries.PollInfo(context.Background(), pollID)
	if err != nil {
		t.Fatalf("poll info failed: %v", err)
	}
	if info.Question != "best season?" || info.Creator != "alice" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.OptionCount != 3 || info.TotalVotes != 1 || !info.Active {
		t.Fatalf("unexpected info counters: %+v", info)
	}

	if _, err := queries.PollInfo(context.Background(), 99); !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}
}

func TestOptionLookup(t *testing.T) {
	queries, pollID := seededQueries(t)

	option, err := queries.Option(context.Background(), pollID, 1)
	if err != nil {
		t.Fatalf("option lookup failed: %v", err)
	}
	if option.Name != "winter" || option.VoteCount != 1 {
		t.Fatalf("unexpected option: %+v", option)
	}

	if _, err := queries.Option(context.Background(), pollID, 3); !errors.Is(err, domainerrors.ErrInvalidOptionIndex) {
		t.Fatalf("expected invalid option index, got %v", err)
	}
	if _, err := queries.Option(context.Background(), pollID, -1); !errors.Is(err, domainerrors.ErrInvalidOptionIndex) {
		t.Fatalf("expected invalid option index for negative, got %v", err)
	}
	// Existence is checked before the index.
	if _, err := queries.Option(context.Background(), 99, 0); !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}
}

func TestResults(t *testing.T) {
	queries, pollID := seededQueries(t)

	results, err := queries.Results(context.Background(), pollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if len(results.Names) != 3 || len(results.VoteCounts) != 3 {
		t.Fatalf("expected parallel slices of 3, got %+v", results)
	}
	if results.Names[1] != "winter" || results.VoteCounts[1] != 1 {
		t.Fatalf("unexpected tally: %+v", results)
	}

	if _, err := queries.Results(context.Background(), 99); !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}
}

func TestHasVotedRequiresExistingPoll(t *testing.T) {
	queries, pollID := seededQueries(t)

	voted, err := queries.HasVoted(context.Background(), pollID, "bob")
	if err != nil || !voted {
		t.Fatalf("expected bob voted, got %v %v", voted, err)
	}
	voted, err = queries.HasVoted(context.Background(), pollID, "carol")
	if err != nil || voted {
		t.Fatalf("expected carol not voted, got %v %v", voted, err)
	}

	if _, err := queries.HasVoted(context.Background(), 99, "bob"); !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}
}

func TestListPolls(t *testing.T) {
	queries, _ := seededQueries(t)

	items, err := queries.ListPolls(context.Background())
	if err != nil {
		t.Fatalf("list polls failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("unexpected listing: %+v", items)
	}

	count, err := queries.PollCount(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("expected count 1, got %d %v", count, err)
	}
}
