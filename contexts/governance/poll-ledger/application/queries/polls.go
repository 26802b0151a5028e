package queries

import (
	"context"
	"strings"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"
)

// PollQueries answers read-only lookups. Every accessor applies the same
// existence check as the mutating operations: an unknown poll id fails with
// ErrInvalidPollID, including HasVoted.
type PollQueries struct {
	Polls ports.PollRepository
}

func (uc PollQueries) PollInfo(ctx context.Context, pollID uint64) (entities.PollInfo, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.PollInfo{}, err
	}
	return poll.Info(), nil
}

func (uc PollQueries) Option(ctx context.Context, pollID uint64, optionIndex int) (entities.Option, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Option{}, err
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return entities.Option{}, domainerrors.ErrInvalidOptionIndex
	}
	return poll.Options[optionIndex], nil
}

func (uc PollQueries) Results(ctx context.Context, pollID uint64) (entities.PollResults, error) {
	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return entities.PollResults{}, err
	}
	return poll.Results(), nil
}

func (uc PollQueries) HasVoted(ctx context.Context, pollID uint64, voter string) (bool, error) {
	return uc.Polls.HasVoted(ctx, pollID, strings.TrimSpace(voter))
}

func (uc PollQueries) ListPolls(ctx context.Context) ([]entities.PollInfo, error) {
	polls, err := uc.Polls.ListPolls(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entities.PollInfo, 0, len(polls))
	for _, poll := range polls {
		items = append(items, poll.Info())
	}
	return items, nil
}

func (uc PollQueries) PollCount(ctx context.Context) (uint64, error) {
	return uc.Polls.PollCount(ctx)
}
