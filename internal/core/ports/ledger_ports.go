package ports

import (
	"context"

	"github.com/adrsyn/ballotbox/internal/core/domain"
)

// LedgerService enforces the single-vote invariant.
type LedgerService interface {
	Cast(ctx context.Context, voter domain.Voter, candidateName string) error
	Reset(ctx context.Context, voterName string) error
}

// ResetService is the admin flow that issues a fresh override token
// for a voter and clears their current vote, if any.
type ResetService interface {
	ResetVoter(ctx context.Context, voterName string) (string, error)
}
