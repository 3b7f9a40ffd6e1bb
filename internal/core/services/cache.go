package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// StateCache holds the in-memory materialized views of the backing
// store: voters, admins, candidates, the voter→candidate map and the
// per-campus tally. Snapshots are replaced wholesale under an
// exclusive lock; readers never observe a half-rebuilt table.
//
// The tally is a derived projection, never authoritative: the vote
// ledger increments its counters on the request path and refreshes
// rebuild it wholesale from the backing store. The two paths race and
// an increment can transiently be discarded by a rebuild; the next
// vote notification heals it.
type StateCache struct {
	store  ports.BackingStore
	logger *slog.Logger

	mu         sync.RWMutex
	voters     map[string]domain.Voter     // name → voter
	admins     map[string]domain.Admin     // id → admin
	candidates map[string]domain.Candidate // name → candidate
	votes      map[string]string           // voter name → candidate name

	tallyMu sync.RWMutex
	tally   map[domain.Campus]map[string]*atomic.Int64 // campus → candidate → count
}

func NewStateCache(store ports.BackingStore, logger *slog.Logger) *StateCache {
	return &StateCache{
		store:      store,
		logger:     logger,
		voters:     map[string]domain.Voter{},
		admins:     map[string]domain.Admin{},
		candidates: map[string]domain.Candidate{},
		votes:      map[string]string{},
		tally:      map[domain.Campus]map[string]*atomic.Int64{},
	}
}

// LoadAll bulk-loads every view. Fetch failures degrade to an empty
// snapshot so the service still starts; a vote referencing an unknown
// candidate is data corruption and returns domain.ErrVoteIntegrity,
// which callers treat as fatal at bootstrap.
func (c *StateCache) LoadAll(ctx context.Context) error {
	c.RefreshVoters(ctx)
	c.RefreshAdmins(ctx)
	c.loadCandidates(ctx)
	return c.RefreshVotes(ctx)
}

// RefreshVoters rebuilds the voter view wholesale. A fetch failure
// installs an empty snapshot, matching startup behavior.
func (c *StateCache) RefreshVoters(ctx context.Context) {
	voters := map[string]domain.Voter{}
	records, err := c.store.ListVoters(ctx)
	if err != nil {
		c.logger.Error("failed to load voters, installing empty snapshot", "error", err)
	}
	for _, v := range records {
		voters[v.Name] = v
	}

	c.mu.Lock()
	c.voters = voters
	c.mu.Unlock()
}

// RefreshAdmins rebuilds the admin view wholesale.
func (c *StateCache) RefreshAdmins(ctx context.Context) {
	admins := map[string]domain.Admin{}
	records, err := c.store.ListAdmins(ctx)
	if err != nil {
		c.logger.Error("failed to load admins, installing empty snapshot", "error", err)
	}
	for _, a := range records {
		admins[a.ID] = a
	}

	c.mu.Lock()
	c.admins = admins
	c.mu.Unlock()
}

// loadCandidates runs once at startup; the candidate roster is fixed
// for the lifetime of an election and has no change subscription.
func (c *StateCache) loadCandidates(ctx context.Context) {
	candidates := map[string]domain.Candidate{}
	records, err := c.store.ListCandidates(ctx)
	if err != nil {
		c.logger.Error("failed to load candidates, installing empty snapshot", "error", err)
	}
	for _, cand := range records {
		candidates[cand.Name] = cand
	}

	c.mu.Lock()
	c.candidates = candidates
	c.mu.Unlock()
}

// RefreshVotes rebuilds the voter→candidate map and the tally from
// the backing store. On an integrity violation the previous snapshot
// is kept and domain.ErrVoteIntegrity is returned; at bootstrap the
// caller aborts the process, on a live refresh the next good
// notification heals the staleness.
func (c *StateCache) RefreshVotes(ctx context.Context) error {
	records, err := c.store.ListVotes(ctx)
	if err != nil {
		c.logger.Error("failed to load votes, installing empty snapshot", "error", err)
		records = nil
	}

	votes := map[string]string{}
	tally := c.emptyTally()
	for _, v := range records {
		counters, ok := c.countersFor(tally, v.CandidateName)
		if !ok {
			return fmt.Errorf("vote by %q for %q: %w", v.VoterName, v.CandidateName, domain.ErrVoteIntegrity)
		}
		votes[v.VoterName] = v.CandidateName
		counters.Add(1)
	}

	c.mu.Lock()
	c.votes = votes
	c.mu.Unlock()

	c.tallyMu.Lock()
	c.tally = tally
	c.tallyMu.Unlock()
	return nil
}

// emptyTally seeds a zero counter for every known candidate, grouped
// by campus.
func (c *StateCache) emptyTally() map[domain.Campus]map[string]*atomic.Int64 {
	tally := map[domain.Campus]map[string]*atomic.Int64{}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cand := range c.candidates {
		if tally[cand.Campus] == nil {
			tally[cand.Campus] = map[string]*atomic.Int64{}
		}
		tally[cand.Campus][cand.Name] = &atomic.Int64{}
	}
	return tally
}

func (c *StateCache) countersFor(tally map[domain.Campus]map[string]*atomic.Int64, candidateName string) (*atomic.Int64, bool) {
	c.mu.RLock()
	cand, ok := c.candidates[candidateName]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	counter, ok := tally[cand.Campus][candidateName]
	return counter, ok
}

func (c *StateCache) VoterByName(name string) (domain.Voter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.voters[name]
	return v, ok
}

// VoterNameByToken scans the cached voter table for a voter whose
// stored token equals the presented one. The cached token may be
// stale relative to the override store; the token resolver applies
// the precedence rule.
func (c *StateCache) VoterNameByToken(token string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, v := range c.voters {
		if v.Token == token {
			return name, true
		}
	}
	return "", false
}

func (c *StateCache) Voters() map[string]domain.Voter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	voters := make(map[string]domain.Voter, len(c.voters))
	for name, v := range c.voters {
		voters[name] = v
	}
	return voters
}

func (c *StateCache) AdminByID(id string) (domain.Admin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.admins[id]
	return a, ok
}

func (c *StateCache) AdminBySessionToken(token string) (domain.Admin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.admins {
		if a.SessionToken != "" && a.SessionToken == token {
			return a, true
		}
	}
	return domain.Admin{}, false
}

// SetAdminSessionToken patches the cached admin entry after a login.
// The durable write happens separately; a later admin refresh makes
// the two agree.
func (c *StateCache) SetAdminSessionToken(id, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.admins[id]; ok {
		a.SessionToken = token
		c.admins[id] = a
	}
}

func (c *StateCache) CandidateByName(name string) (domain.Candidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cand, ok := c.candidates[name]
	return cand, ok
}

func (c *StateCache) Candidates() []domain.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	candidates := make([]domain.Candidate, 0, len(c.candidates))
	for _, cand := range c.candidates {
		candidates = append(candidates, cand)
	}
	return candidates
}

// VotedCandidate reports who the voter currently has a live vote for.
func (c *StateCache) VotedCandidate(voterName string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	candidate, ok := c.votes[voterName]
	return candidate, ok
}

func (c *StateCache) Votes() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	votes := make(map[string]string, len(c.votes))
	for voter, candidate := range c.votes {
		votes[voter] = candidate
	}
	return votes
}

// RecordVote marks the voter as having voted and increments the
// candidate's counter. Called by the ledger only after the durable
// write succeeded.
func (c *StateCache) RecordVote(voterName, candidateName string) {
	c.mu.Lock()
	c.votes[voterName] = candidateName
	c.mu.Unlock()

	if counter, ok := c.tallyCounter(candidateName); ok {
		counter.Add(1)
	}
}

// RemoveVote clears the voter's live vote and decrements the prior
// candidate's counter exactly once. Returns the candidate the vote
// was for, if one existed.
func (c *StateCache) RemoveVote(voterName string) (string, bool) {
	c.mu.Lock()
	candidate, ok := c.votes[voterName]
	if ok {
		delete(c.votes, voterName)
	}
	c.mu.Unlock()
	if !ok {
		return "", false
	}

	if counter, found := c.tallyCounter(candidate); found {
		counter.Add(-1)
	}
	return candidate, true
}

func (c *StateCache) tallyCounter(candidateName string) (*atomic.Int64, bool) {
	c.mu.RLock()
	cand, ok := c.candidates[candidateName]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	c.tallyMu.RLock()
	defer c.tallyMu.RUnlock()
	counter, ok := c.tally[cand.Campus][candidateName]
	return counter, ok
}

// TallyByCampus snapshots the current counters.
func (c *StateCache) TallyByCampus() map[domain.Campus]map[string]int64 {
	c.tallyMu.RLock()
	defer c.tallyMu.RUnlock()

	result := make(map[domain.Campus]map[string]int64, len(c.tally))
	for campus, counters := range c.tally {
		result[campus] = make(map[string]int64, len(counters))
		for candidate, counter := range counters {
			result[campus][candidate] = counter.Load()
		}
	}
	return result
}
