package httpadapter

import (
	"context"
	"log/slog"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/application/commands"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/application/queries"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	httptransport "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/transport/http"
)

type Handler struct {
	Polls   commands.PollUseCase
	Queries queries.PollQueries
	Logger  *slog.Logger
}

func (h Handler) CreatePollHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreatePollRequest,
) (httptransport.PollResponse, error) {
	pollID, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		Caller:      userID,
		Question:    req.Question,
		OptionNames: req.Options,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	info, err := h.Queries.PollInfo(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPollInfo(info), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	userID string,
	pollID uint64,
	req httptransport.CastVoteRequest,
) error {
	return h.Polls.CastVote(ctx, commands.CastVoteCommand{
		PollID:      pollID,
		OptionIndex: req.OptionIndex,
		Caller:      userID,
	})
}

func (h Handler) ClosePollHandler(ctx context.Context, userID string, pollID uint64) error {
	return h.Polls.ClosePoll(ctx, commands.ClosePollCommand{
		PollID: pollID,
		Caller: userID,
	})
}

func (h Handler) PollInfoHandler(ctx context.Context, pollID uint64) (httptransport.PollResponse, error) {
	info, err := h.Queries.PollInfo(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPollInfo(info), nil
}

func (h Handler) ListPollsHandler(ctx context.Context) (httptransport.PollListResponse, error) {
	infos, err := h.Queries.ListPolls(ctx)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	total, err := h.Queries.PollCount(ctx)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	items := make([]httptransport.PollResponse, 0, len(infos))
	for _, info := range infos {
		items = append(items, mapPollInfo(info))
	}
	return httptransport.PollListResponse{
		Items: items,
		Total: total,
	}, nil
}

func (h Handler) OptionHandler(ctx context.Context, pollID uint64, optionIndex int) (httptransport.OptionResponse, error) {
	option, err := h.Queries.Option(ctx, pollID, optionIndex)
	if err != nil {
		return httptransport.OptionResponse{}, err
	}
	return httptransport.OptionResponse{
		PollID:      pollID,
		OptionIndex: optionIndex,
		Name:        option.Name,
		VoteCount:   option.VoteCount,
	}, nil
}

func (h Handler) PollResultsHandler(ctx context.Context, pollID uint64) (httptransport.PollResultsResponse, error) {
	results, err := h.Queries.Results(ctx, pollID)
	if err != nil {
		return httptransport.PollResultsResponse{}, err
	}
	return httptransport.PollResultsResponse{
		PollID:     results.PollID,
		Names:      results.Names,
		VoteCounts: results.VoteCounts,
	}, nil
}

func (h Handler) HasVotedHandler(ctx context.Context, pollID uint64, voterID string) (httptransport.HasVotedResponse, error) {
	voted, err := h.Queries.HasVoted(ctx, pollID, voterID)
	if err != nil {
		return httptransport.HasVotedResponse{}, err
	}
	return httptransport.HasVotedResponse{
		PollID:   pollID,
		VoterID:  voterID,
		HasVoted: voted,
	}, nil
}

func mapPollInfo(info entities.PollInfo) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:      info.ID,
		Question:    info.Question,
		Creator:     info.Creator,
		CreatedAt:   info.CreatedAt,
		Active:      info.Active,
		OptionCount: info.OptionCount,
		TotalVotes:  info.TotalVotes,
	}
}
