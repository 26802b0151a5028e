package unit

import (
	"context"
	"errors"
	"testing"

	pollledger "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger"
	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
	httptransport "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/transport/http"
)

func TestPollLedgerCreateVoteClose(t *testing.T) {
	module := pollledger.NewInMemoryModule(nil, nil)

	created, err := module.Handler.CreatePollHandler(context.Background(), "alice", httptransport.CreatePollRequest{
		Question: "favorite color?",
		Options:  []string{"red", "blue", "green"},
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if created.PollID != 1 {
		t.Fatalf("expected poll id 1, got %d", created.PollID)
	}
	if !created.Active || created.OptionCount != 3 {
		t.Fatalf("unexpected poll snapshot: %+v", created)
	}

	err = module.Handler.CastVoteHandler(context.Background(), "bob", created.PollID, httptransport.CastVoteRequest{OptionIndex: 2})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	err = module.Handler.CastVoteHandler(context.Background(), "bob", created.PollID, httptransport.CastVoteRequest{OptionIndex: 0})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted, got %v", err)
	}

	results, err := module.Handler.PollResultsHandler(context.Background(), created.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.VoteCounts[2] != 1 {
		t.Fatalf("expected one vote for option 2, got %+v", results)
	}

	if err := module.Handler.ClosePollHandler(context.Background(), "alice", created.PollID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	err = module.Handler.CastVoteHandler(context.Background(), "carol", created.PollID, httptransport.CastVoteRequest{OptionIndex: 0})
	if !errors.Is(err, domainerrors.ErrPollClosed) {
		t.Fatalf("expected poll closed, got %v", err)
	}

	info, err := module.Handler.PollInfoHandler(context.Background(), created.PollID)
	if err != nil {
		t.Fatalf("poll info failed: %v", err)
	}
	if info.Active || info.TotalVotes != 1 {
		t.Fatalf("unexpected closed snapshot: %+v", info)
	}
}

func TestPollLedgerEmitsEventsThroughOutbox(t *testing.T) {
	module := pollledger.NewInMemoryModule(nil, nil)

	created, err := module.Handler.CreatePollHandler(context.Background(), "alice", httptransport.CreatePollRequest{
		Question: "q",
		Options:  []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if err := module.Handler.CastVoteHandler(context.Background(), "bob", created.PollID, httptransport.CastVoteRequest{OptionIndex: 0}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if err := module.Handler.ClosePollHandler(context.Background(), "alice", created.PollID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 events, got %d", len(pending))
	}
	types := map[string]bool{}
	for _, row := range pending {
		types[row.EventType] = true
	}
	for _, want := range []string{"poll.created", "vote.cast", "poll.closed"} {
		if !types[want] {
			t.Fatalf("missing event type %s in %v", want, types)
		}
	}
}

func TestPollLedgerRejectionsEmitNoEvents(t *testing.T) {
	module := pollledger.NewInMemoryModule(nil, nil)

	_, err := module.Handler.CreatePollHandler(context.Background(), "alice", httptransport.CreatePollRequest{
		Question: "q",
		Options:  []string{"only"},
	})
	if !errors.Is(err, domainerrors.ErrTooFewOptions) {
		t.Fatalf("expected too few options, got %v", err)
	}

	err = module.Handler.CastVoteHandler(context.Background(), "bob", 42, httptransport.CastVoteRequest{OptionIndex: 0})
	if !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}
	err = module.Handler.ClosePollHandler(context.Background(), "alice", 42)
	if !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no events after rejections, got %d", len(pending))
	}
}

func TestPollLedgerHasVotedRequiresExistingPoll(t *testing.T) {
	module := pollledger.NewInMemoryModule(nil, nil)

	_, err := module.Handler.HasVotedHandler(context.Background(), 7, "bob")
	if !errors.Is(err, domainerrors.ErrInvalidPollID) {
		t.Fatalf("expected invalid poll id, got %v", err)
	}
}
