package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// TokenResolver answers who, if anyone, a presented bearer token
// authenticates as. Voter tokens live in two independently writable
// places: the cached voter table and the override store written by
// forced resets. The cache is never patched on a reset, so the
// precedence is a read-time rule, not cache invalidation.
type TokenResolver struct {
	cache     *StateCache
	overrides ports.OverrideStore
	logger    *slog.Logger
}

func NewTokenResolver(cache *StateCache, overrides ports.OverrideStore, logger *slog.Logger) *TokenResolver {
	return &TokenResolver{
		cache:     cache,
		overrides: overrides,
		logger:    logger,
	}
}

// resolveVoterName applies the precedence rule:
//  1. a token matching a current override entry authenticates as that
//     voter, always;
//  2. a token matching a cached voter authenticates only if that voter
//     has no override entry at all — once reset, the cached token is
//     stale and must never authenticate;
//  3. anything else is rejected.
func resolveVoterName(token string, overrides map[string]string, cachedName string, cachedFound bool) (string, bool) {
	for name, overrideToken := range overrides {
		if overrideToken == token {
			return name, true
		}
	}
	if cachedFound {
		if _, wasReset := overrides[cachedName]; !wasReset {
			return cachedName, true
		}
	}
	return "", false
}

func (r *TokenResolver) VerifyVoter(ctx context.Context, token string) (domain.Voter, error) {
	overrides, err := r.overrides.ResetTokens(ctx)
	if err != nil {
		return domain.Voter{}, fmt.Errorf("failed to read override tokens: %w", err)
	}

	cachedName, cachedFound := r.cache.VoterNameByToken(token)
	name, ok := resolveVoterName(token, overrides, cachedName, cachedFound)
	if !ok {
		return domain.Voter{}, domain.ErrUnauthorized
	}

	voter, ok := r.cache.VoterByName(name)
	if !ok {
		// An override entry exists for a voter absent from the cache;
		// possible if the voter row vanished or the voter load failed.
		r.logger.Error("override token resolved to a voter missing from cache", "voter", name)
		return domain.Voter{}, domain.ErrInternal
	}
	return voter, nil
}

// VerifyAdmin accepts iff some cached admin's session token equals the
// presented token exactly. Admins have no override layer.
func (r *TokenResolver) VerifyAdmin(ctx context.Context, token string) (domain.Admin, error) {
	if token == "" {
		return domain.Admin{}, domain.ErrUnauthorized
	}
	admin, ok := r.cache.AdminBySessionToken(token)
	if !ok {
		return domain.Admin{}, domain.ErrUnauthorized
	}
	return admin, nil
}
