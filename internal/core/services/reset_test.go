package services

import (
	"context"
	"errors"
	"testing"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetVoterIssuesOverrideAndClearsVote(t *testing.T) {
	store := electionStore()
	ledger, cache := newLedger(t, store)
	overrides := newFakeOverrides()
	flow := NewResetFlow(cache, overrides, ledger, testLogger())

	voter := domain.Voter{Name: "Alice", Campus: domain.CampusMM}
	require.NoError(t, ledger.Cast(context.Background(), voter, "Carol"))

	token, err := flow.ResetVoter(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Len(t, token, resetTokenLength)

	stored, err := overrides.ResetTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, stored["Alice"])

	_, voted := cache.VotedCandidate("Alice")
	assert.False(t, voted)
	assert.Equal(t, int64(0), cache.TallyByCampus()[domain.CampusMM]["Carol"])
	assert.Zero(t, store.voteCount("Alice"))

	// The voter can immediately vote again.
	require.NoError(t, ledger.Cast(context.Background(), voter, "Carol"))
	assert.Equal(t, int64(1), cache.TallyByCampus()[domain.CampusMM]["Carol"])
}

func TestResetVoterUnknownVoter(t *testing.T) {
	store := electionStore()
	ledger, cache := newLedger(t, store)
	flow := NewResetFlow(cache, newFakeOverrides(), ledger, testLogger())

	_, err := flow.ResetVoter(context.Background(), "Ghost")
	assert.ErrorIs(t, err, domain.ErrVoterNotFound)
}

func TestResetVoterOverwritesPreviousOverride(t *testing.T) {
	store := electionStore()
	ledger, cache := newLedger(t, store)
	overrides := newFakeOverrides()
	flow := NewResetFlow(cache, overrides, ledger, testLogger())
	resolver := NewTokenResolver(cache, overrides, testLogger())

	first, err := flow.ResetVoter(context.Background(), "Alice")
	require.NoError(t, err)
	second, err := flow.ResetVoter(context.Background(), "Alice")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Only the latest override token authenticates.
	_, err = resolver.VerifyVoter(context.Background(), first)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	voter, err := resolver.VerifyVoter(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "Alice", voter.Name)
}

func TestResetVoterOverrideWriteFailure(t *testing.T) {
	store := electionStore()
	ledger, cache := newLedger(t, store)
	overrides := newFakeOverrides()
	overrides.setErr = errors.New("connection refused")
	flow := NewResetFlow(cache, overrides, ledger, testLogger())

	voter := domain.Voter{Name: "Alice", Campus: domain.CampusMM}
	require.NoError(t, ledger.Cast(context.Background(), voter, "Carol"))

	_, err := flow.ResetVoter(context.Background(), "Alice")
	require.Error(t, err)

	// The vote survives a failed reset.
	candidate, voted := cache.VotedCandidate("Alice")
	require.True(t, voted)
	assert.Equal(t, "Carol", candidate)
}

func TestAdminLogin(t *testing.T) {
	store := electionStore()
	cache := NewStateCache(store, testLogger())
	require.NoError(t, cache.LoadAll(context.Background()))
	session := NewAdminSession(store, cache, testLogger())
	resolver := NewTokenResolver(cache, newFakeOverrides(), testLogger())

	_, err := session.Login(context.Background(), "root", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = session.Login(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token, err := session.Login(context.Background(), "root", "hunter2")
	require.NoError(t, err)
	assert.Len(t, token, sessionTokenLength)

	admin, err := resolver.VerifyAdmin(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "root", admin.ID)

	// The token was pushed down to the backing store as well.
	admins, err := store.ListAdmins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, admins[0].SessionToken)
}

func TestAdminLoginSurvivesPersistFailure(t *testing.T) {
	store := electionStore()
	store.sessionErr = errors.New("write timeout")
	cache := NewStateCache(store, testLogger())
	require.NoError(t, cache.LoadAll(context.Background()))
	session := NewAdminSession(store, cache, testLogger())

	token, err := session.Login(context.Background(), "root", "hunter2")
	require.NoError(t, err)

	_, ok := cache.AdminBySessionToken(token)
	assert.True(t, ok, "cached session must authenticate even if the durable write failed")
}
