package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("invalid or unknown token")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrCampusMismatch    = errors.New("candidate belongs to another campus")
	ErrAlreadyVoted      = errors.New("voter has already voted")
	ErrVoterNotFound     = errors.New("voter not found")
	ErrVoteIntegrity     = errors.New("vote references an unknown candidate")
	ErrInternal          = errors.New("internal server error")
)
