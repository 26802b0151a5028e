package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type CastVoteRequest struct {
	OptionIndex int `json:"option_index"`
}

type PollResponse struct {
	PollID      uint64    `json:"poll_id"`
	Question    string    `json:"question"`
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"created_at"`
	Active      bool      `json:"active"`
	OptionCount int       `json:"option_count"`
	TotalVotes  uint64    `json:"total_votes"`
}

type PollListResponse struct {
	Items []PollResponse `json:"items"`
	Total uint64         `json:"total"`
}

type OptionResponse struct {
	PollID      uint64 `json:"poll_id"`
	OptionIndex int    `json:"option_index"`
	Name        string `json:"name"`
	VoteCount   uint64 `json:"vote_count"`
}

type PollResultsResponse struct {
	PollID     uint64   `json:"poll_id"`
	Names      []string `json:"names"`
	VoteCounts []uint64 `json:"vote_counts"`
}

type HasVotedResponse struct {
	PollID   uint64 `json:"poll_id"`
	VoterID  string `json:"voter_id"`
	HasVoted bool   `json:"has_voted"`
}
