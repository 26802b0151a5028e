package entities

import (
	"time"

	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
)

const (
	MinOptions = 2
	MaxOptions = 10
)

// Option is one selectable choice within a poll. Name is immutable; VoteCount
// only ever increases, by exactly one per distinct voter.
type Option struct {
	Name      string
	VoteCount uint64
}

// Poll is the aggregate root of the ledger. Each poll exclusively owns its
// options and its voter set; ids are assigned by the repository, sequentially
// from 1, and are never reused.
type Poll struct {
	ID        uint64
	Question  string
	Options   []Option
	Creator   string
	CreatedAt time.Time
	Active    bool
	VotedBy   map[string]struct{}
}

// NewPoll validates creation inputs and returns a poll with no votes and no id
// assigned yet. Checks run in a fixed order so the first violation decides
// which error surfaces: option count lower bound, upper bound, question
// emptiness, then each option name in sequence order.
func NewPoll(question string, optionNames []string, creator string, createdAt time.Time) (Poll, error) {
	if len(optionNames) < MinOptions {
		return Poll{}, domainerrors.ErrTooFewOptions
	}
	if len(optionNames) > MaxOptions {
		return Poll{}, domainerrors.ErrTooManyOptions
	}
	if question == "" {
		return Poll{}, domainerrors.ErrEmptyQuestion
	}
	options := make([]Option, 0, len(optionNames))
	for _, name := range optionNames {
		if name == "" {
			return Poll{}, domainerrors.ErrEmptyOptionName
		}
		options = append(options, Option{Name: name})
	}
	return Poll{
		Question:  question,
		Options:   options,
		Creator:   creator,
		CreatedAt: createdAt.UTC(),
		Active:    true,
		VotedBy:   make(map[string]struct{}),
	}, nil
}

// CastVote records one vote by voter for the option at optionIndex.
// Preconditions run in a fixed order, each with a distinct error; on any
// failure the poll is left untouched.
func (p *Poll) CastVote(voter string, optionIndex int) error {
	if !p.Active {
		return domainerrors.ErrPollClosed
	}
	if _, voted := p.VotedBy[voter]; voted {
		return domainerrors.ErrAlreadyVoted
	}
	if optionIndex < 0 || optionIndex >= len(p.Options) {
		return domainerrors.ErrInvalidOptionIndex
	}
	if p.VotedBy == nil {
		p.VotedBy = make(map[string]struct{})
	}
	p.VotedBy[voter] = struct{}{}
	p.Options[optionIndex].VoteCount++
	return nil
}

// Close deactivates the poll. The transition is one-way; there is no reopen.
func (p *Poll) Close(caller string) error {
	if caller != p.Creator {
		return domainerrors.ErrNotCreator
	}
	if !p.Active {
		return domainerrors.ErrAlreadyClosed
	}
	p.Active = false
	return nil
}

func (p Poll) HasVoted(voter string) bool {
	_, voted := p.VotedBy[voter]
	return voted
}

// TotalVotes sums per-option tallies. The ledger invariant keeps this equal to
// the size of the voter set at all times.
func (p Poll) TotalVotes() uint64 {
	var total uint64
	for _, option := range p.Options {
		total += option.VoteCount
	}
	return total
}

// Clone returns a deep copy so repository snapshots never alias live state.
func (p Poll) Clone() Poll {
	out := p
	out.Options = append([]Option(nil), p.Options...)
	out.VotedBy = make(map[string]struct{}, len(p.VotedBy))
	for voter := range p.VotedBy {
		out.VotedBy[voter] = struct{}{}
	}
	return out
}

// PollInfo is the header snapshot returned by read queries.
type PollInfo struct {
	ID          uint64
	Question    string
	Creator     string
	CreatedAt   time.Time
	Active      bool
	OptionCount int
	TotalVotes  uint64
}

func (p Poll) Info() PollInfo {
	return PollInfo{
		ID:          p.ID,
		Question:    p.Question,
		Creator:     p.Creator,
		CreatedAt:   p.CreatedAt.UTC(),
		Active:      p.Active,
		OptionCount: len(p.Options),
		TotalVotes:  p.TotalVotes(),
	}
}

// PollResults is a full tally snapshot: parallel slices in option-index order.
type PollResults struct {
	PollID     uint64
	Names      []string
	VoteCounts []uint64
}

func (p Poll) Results() PollResults {
	results := PollResults{
		PollID:     p.ID,
		Names:      make([]string, 0, len(p.Options)),
		VoteCounts: make([]uint64, 0, len(p.Options)),
	}
	for _, option := range p.Options {
		results.Names = append(results.Names, option.Name)
		results.VoteCounts = append(results.VoteCounts, option.VoteCount)
	}
	return results
}
