package errors

import "errors"

var (
	ErrInvalidPollID      = errors.New("poll does not exist")
	ErrTooFewOptions      = errors.New("poll requires at least 2 options")
	ErrTooManyOptions     = errors.New("poll allows at most 10 options")
	ErrEmptyQuestion      = errors.New("poll question must not be empty")
	ErrEmptyOptionName    = errors.New("option name must not be empty")
	ErrPollClosed         = errors.New("poll is closed to voting")
	ErrAlreadyVoted       = errors.New("caller has already voted on this poll")
	ErrInvalidOptionIndex = errors.New("option index is out of range")
	ErrNotCreator         = errors.New("only the poll creator may close the poll")
	ErrAlreadyClosed      = errors.New("poll is already closed")
)
