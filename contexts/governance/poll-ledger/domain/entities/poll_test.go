package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
)

func newTestPoll(t *testing.T, optionNames ...string) Poll {
	t.Helper()
	poll, err := NewPoll("favorite color?", optionNames, "alice", time.Now().UTC())
	if err != nil {
		t.Fatalf("new poll failed: %v", err)
	}
	return poll
}

func TestNewPollValidationOrder(t *testing.T) {
	now := time.Now().UTC()

	if _, err := NewPoll("q", []string{"only"}, "alice", now); !errors.Is(err, domainerrors.ErrTooFewOptions) {
		t.Fatalf("expected too few options, got %v", err)
	}

	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "opt"
	}
	if _, err := NewPoll("q", eleven, "alice", now); !errors.Is(err, domainerrors.ErrTooManyOptions) {
		t.Fatalf("expected too many options, got %v", err)
	}

	// Too many options wins over empty question when both apply.
	eleven[0] = ""
	if _, err := NewPoll("", eleven, "alice", now); !errors.Is(err, domainerrors.ErrTooManyOptions) {
		t.Fatalf("expected too many options before empty question, got %v", err)
	}

	if _, err := NewPoll("", []string{"a", "b"}, "alice", now); !errors.Is(err, domainerrors.ErrEmptyQuestion) {
		t.Fatalf("expected empty question, got %v", err)
	}

	// Empty question wins over an empty option name.
	if _, err := NewPoll("", []string{"", "b"}, "alice", now); !errors.Is(err, domainerrors.ErrEmptyQuestion) {
		t.Fatalf("expected empty question before empty option, got %v", err)
	}

	if _, err := NewPoll("q", []string{"a", ""}, "alice", now); !errors.Is(err, domainerrors.ErrEmptyOptionName) {
		t.Fatalf("expected empty option name, got %v", err)
	}
}

func TestNewPollBounds(t *testing.T) {
	two := newTestPoll(t, "a", "b")
	if len(two.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(two.Options))
	}
	if !two.Active {
		t.Fatalf("expected new poll to be active")
	}

	ten := make([]string, 10)
	for i := range ten {
		ten[i] = "opt"
	}
	poll, err := NewPoll("q", ten, "alice", time.Now().UTC())
	if err != nil {
		t.Fatalf("ten options should be allowed: %v", err)
	}
	if len(poll.Options) != 10 {
		t.Fatalf("expected 10 options, got %d", len(poll.Options))
	}
}

func TestCastVotePreconditionOrder(t *testing.T) {
	poll := newTestPoll(t, "a", "b")

	if err := poll.CastVote("bob", 0); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if poll.Options[0].VoteCount != 1 {
		t.Fatalf("expected tally 1, got %d", poll.Options[0].VoteCount)
	}
	if !poll.HasVoted("bob") {
		t.Fatalf("expected bob recorded as voter")
	}

	// Repeat voter is rejected even with an out-of-range index.
	if err := poll.CastVote("bob", 99); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already voted, got %v", err)
	}

	if err := poll.CastVote("carol", 2); !errors.Is(err, domainerrors.ErrInvalidOptionIndex) {
		t.Fatalf("expected invalid option index, got %v", err)
	}
	if err := poll.CastVote("carol", -1); !errors.Is(err, domainerrors.ErrInvalidOptionIndex) {
		t.Fatalf("expected invalid option index for negative, got %v", err)
	}
	if poll.HasVoted("carol") {
		t.Fatalf("failed vote must not record the voter")
	}

	if err := poll.Close("alice"); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	// Closed wins over every later check, including repeat voter.
	if err := poll.CastVote("bob", 0); !errors.Is(err, domainerrors.ErrPollClosed) {
		t.Fatalf("expected poll closed, got %v", err)
	}
	if err := poll.CastVote("carol", 0); !errors.Is(err, domainerrors.ErrPollClosed) {
		t.Fatalf("expected poll closed for new voter, got %v", err)
	}
}

func TestClosePreconditions(t *testing.T) {
	poll := newTestPoll(t, "a", "b")

	if err := poll.Close("mallory"); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected not creator, got %v", err)
	}
	if !poll.Active {
		t.Fatalf("failed close must not deactivate the poll")
	}

	if err := poll.Close("alice"); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if poll.Active {
		t.Fatalf("expected poll inactive after close")
	}

	if err := poll.Close("alice"); !errors.Is(err, domainerrors.ErrAlreadyClosed) {
		t.Fatalf("expected already closed, got %v", err)
	}
	// Non-creator still sees the creator check first.
	if err := poll.Close("mallory"); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected not creator on closed poll, got %v", err)
	}
}

func TestTallyMatchesVoterSet(t *testing.T) {
	poll := newTestPoll(t, "a", "b", "c")
	voters := []string{"v1", "v2", "v3", "v4", "v5"}
	for i, voter := range voters {
		if err := poll.CastVote(voter, i%3); err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
	}
	if poll.TotalVotes() != uint64(len(poll.VotedBy)) {
		t.Fatalf("tally %d does not match voter set %d", poll.TotalVotes(), len(poll.VotedBy))
	}

	results := poll.Results()
	if len(results.Names) != 3 || len(results.VoteCounts) != 3 {
		t.Fatalf("expected parallel slices of length 3, got %d/%d", len(results.Names), len(results.VoteCounts))
	}
	var sum uint64
	for _, count := range results.VoteCounts {
		sum += count
	}
	if sum != 5 {
		t.Fatalf("expected 5 total votes, got %d", sum)
	}

	info := poll.Info()
	if info.TotalVotes != 5 || info.OptionCount != 3 {
		t.Fatalf("unexpected info snapshot: %+v", info)
	}
}

func TestCloneDoesNotAliasState(t *testing.T) {
	poll := newTestPoll(t, "a", "b")
	if err := poll.CastVote("bob", 0); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	clone := poll.Clone()
	if err := clone.CastVote("carol", 1); err != nil {
		t.Fatalf("vote on clone failed: %v", err)
	}

	if poll.HasVoted("carol") {
		t.Fatalf("clone vote leaked into original voter set")
	}
	if poll.Options[1].VoteCount != 0 {
		t.Fatalf("clone vote leaked into original tally")
	}
}
