package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/application"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

// CreatePollCommand is the write-model input for poll creation.
type CreatePollCommand struct {
	Caller      string
	Question    string
	OptionNames []string
}

// CastVoteCommand records one vote by Caller for the option at OptionIndex.
type CastVoteCommand struct {
	PollID      uint64
	OptionIndex int
	Caller      string
}

// ClosePollCommand requests a creator-gated, irreversible poll close.
type ClosePollCommand struct {
	PollID uint64
	Caller string
}

// PollUseCase orchestrates the three ledger mutations. Validation happens
// before any repository write, so a failed command leaves no partial poll, no
// partial tally, and no event behind.
type PollUseCase struct {
	Polls  ports.PollRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreatePoll validates inputs, appends a new poll to the ledger, and emits
// poll.created. The returned id is sequential, starting at 1.
func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	question := strings.TrimSpace(cmd.Question)
	optionNames := make([]string, 0, len(cmd.OptionNames))
	for _, name := range cmd.OptionNames {
		optionNames = append(optionNames, strings.TrimSpace(name))
	}

	poll, err := entities.NewPoll(question, optionNames, caller, uc.now())
	if err != nil {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "governance/poll-ledger",
			"layer", "application",
			"creator", caller,
			"option_count", len(optionNames),
			"error", err.Error(),
		)
		return 0, err
	}

	pollID, err := uc.Polls.CreatePoll(ctx, poll)
	if err != nil {
		return 0, err
	}
	if err := uc.appendPollEvent(ctx, EventPollCreated, pollID, poll.CreatedAt, map[string]any{
		"poll_id":  pollID,
		"question": poll.Question,
		"creator":  poll.Creator,
	}); err != nil {
		return 0, err
	}

	logger.Info("poll created",
		"event", "poll_created",
		"module", "governance/poll-ledger",
		"layer", "application",
		"poll_id", pollID,
		"creator", poll.Creator,
		"option_count", len(poll.Options),
	)
	return pollID, nil
}

// CastVote applies the single-vote-per-participant mutation and emits
// vote.cast. Precondition order: poll existence, poll open, caller has not
// voted, option index in range.
func (uc PollUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)

	poll, err := uc.Polls.CastVote(ctx, cmd.PollID, cmd.OptionIndex, caller)
	if err != nil {
		logger.Warn("vote rejected",
			"event", "poll_vote_rejected",
			"module", "governance/poll-ledger",
			"layer", "application",
			"poll_id", cmd.PollID,
			"option_index", cmd.OptionIndex,
			"voter", caller,
			"error", err.Error(),
		)
		return err
	}
	if err := uc.appendPollEvent(ctx, EventVoteCast, poll.ID, uc.now(), map[string]any{
		"poll_id":      poll.ID,
		"option_index": cmd.OptionIndex,
		"voter":        caller,
	}); err != nil {
		return err
	}

	logger.Info("vote cast",
		"event", "poll_vote_cast",
		"module", "governance/poll-ledger",
		"layer", "application",
		"poll_id", poll.ID,
		"option_index", cmd.OptionIndex,
		"voter", caller,
		"total_votes", poll.TotalVotes(),
	)
	return nil
}

// ClosePoll transitions the poll to its terminal closed state and emits
// poll.closed. Only the recorded creator may close, exactly once.
func (uc PollUseCase) ClosePoll(ctx context.Context, cmd ClosePollCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)

	poll, err := uc.Polls.ClosePoll(ctx, cmd.PollID, caller)
	if err != nil {
		logger.Warn("poll close rejected",
			"event", "poll_close_rejected",
			"module", "governance/poll-ledger",
			"layer", "application",
			"poll_id", cmd.PollID,
			"caller", caller,
			"error", err.Error(),
		)
		return err
	}
	if err := uc.appendPollEvent(ctx, EventPollClosed, poll.ID, uc.now(), map[string]any{
		"poll_id": poll.ID,
	}); err != nil {
		return err
	}

	logger.Info("poll closed",
		"event", "poll_closed",
		"module", "governance/poll-ledger",
		"layer", "application",
		"poll_id", poll.ID,
		"total_votes", poll.TotalVotes(),
	)
	return nil
}

func (uc PollUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc PollUseCase) appendPollEvent(
	ctx context.Context,
	eventType string,
	pollID uint64,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.newEventID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newPollEnvelope(eventID, eventType, pollID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc PollUseCase) newEventID(ctx context.Context) (string, error) {
	if uc.IDGen == nil {
		return "", nil
	}
	return uc.IDGen.NewID(ctx)
}
