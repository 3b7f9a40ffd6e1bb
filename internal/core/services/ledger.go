package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// VoteLedger enforces at-most-one-vote-per-voter and keeps the tally
// projection in step with its own writes. Calls for the same voter are
// serialized on a per-voter mutex so that concurrent casts yield
// exactly one success; different voters proceed in parallel.
type VoteLedger struct {
	store  ports.BackingStore
	cache  *StateCache
	logger *slog.Logger

	voterLocks sync.Map // voter name → *sync.Mutex
}

func NewVoteLedger(store ports.BackingStore, cache *StateCache, logger *slog.Logger) *VoteLedger {
	return &VoteLedger{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

func (l *VoteLedger) lockVoter(name string) *sync.Mutex {
	mu, _ := l.voterLocks.LoadOrStore(name, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Cast records a vote by voter for candidateName. The cache is only
// mutated after the durable write succeeds; a failed write must not
// leave the cache ahead of the store.
func (l *VoteLedger) Cast(ctx context.Context, voter domain.Voter, candidateName string) error {
	candidate, ok := l.cache.CandidateByName(candidateName)
	if !ok {
		l.logger.Info("vote for unregistered candidate rejected", "voter", voter.Name, "candidate", candidateName)
		return domain.ErrCandidateNotFound
	}
	if candidate.Campus != voter.Campus {
		return domain.ErrCampusMismatch
	}

	mu := l.lockVoter(voter.Name)
	mu.Lock()
	defer mu.Unlock()

	if _, voted := l.cache.VotedCandidate(voter.Name); voted {
		return domain.ErrAlreadyVoted
	}

	vote := domain.Vote{VoterName: voter.Name, CandidateName: candidateName}
	if err := l.store.InsertVote(ctx, vote); err != nil {
		return fmt.Errorf("failed to persist vote: %w", err)
	}

	l.cache.RecordVote(voter.Name, candidateName)
	l.logger.Info("vote recorded", "voter", voter.Name, "candidate", candidateName)
	return nil
}

// Reset deletes the voter's live vote from the backing store and
// decrements the prior candidate's counter, if a vote existed. The
// has-voted marker is cleared before the voter's lock is released so
// a racing Cast observes a consistent state.
func (l *VoteLedger) Reset(ctx context.Context, voterName string) error {
	mu := l.lockVoter(voterName)
	mu.Lock()
	defer mu.Unlock()

	if err := l.store.DeleteVotesByVoter(ctx, voterName); err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	if candidate, existed := l.cache.RemoveVote(voterName); existed {
		l.logger.Info("vote removed", "voter", voterName, "candidate", candidate)
	}
	return nil
}
