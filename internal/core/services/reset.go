package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// ResetFlow is the admin-facing forced reset: issue a new override
// token for a voter, then clear their current vote. The override
// store and the backing store are written without a transaction
// between them; if the vote removal fails the override token already
// stands, and recovery is by retrying the reset.
type ResetFlow struct {
	cache     *StateCache
	overrides ports.OverrideStore
	ledger    ports.LedgerService
	logger    *slog.Logger
}

func NewResetFlow(cache *StateCache, overrides ports.OverrideStore, ledger ports.LedgerService, logger *slog.Logger) *ResetFlow {
	return &ResetFlow{
		cache:     cache,
		overrides: overrides,
		ledger:    ledger,
		logger:    logger,
	}
}

// ResetVoter returns the voter's new override token. A repeat reset
// overwrites the previous override entry, so only the latest token
// authenticates; entries are never cleared.
func (f *ResetFlow) ResetVoter(ctx context.Context, voterName string) (string, error) {
	if _, ok := f.cache.VoterByName(voterName); !ok {
		f.logger.Info("reset requested for unknown voter", "voter", voterName)
		return "", domain.ErrVoterNotFound
	}

	token := NewResetToken()
	if err := f.overrides.SetResetToken(ctx, voterName, token); err != nil {
		return "", fmt.Errorf("failed to store override token: %w", err)
	}

	if err := f.ledger.Reset(ctx, voterName); err != nil {
		return "", err
	}

	f.logger.Info("voter token reset", "voter", voterName)
	return token, nil
}
