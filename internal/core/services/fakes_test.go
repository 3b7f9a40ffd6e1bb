package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/adrsyn/ballotbox/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory BackingStore for unit tests.
type fakeStore struct {
	mu         sync.Mutex
	voters     []domain.Voter
	admins     []domain.Admin
	candidates []domain.Candidate
	votes      []domain.Vote

	listVotersErr error
	listAdminsErr error
	listVotesErr  error
	insertErr     error
	deleteErr     error
	sessionErr    error
}

func (s *fakeStore) ListVoters(ctx context.Context) ([]domain.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listVotersErr != nil {
		return nil, s.listVotersErr
	}
	return append([]domain.Voter(nil), s.voters...), nil
}

func (s *fakeStore) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listAdminsErr != nil {
		return nil, s.listAdminsErr
	}
	return append([]domain.Admin(nil), s.admins...), nil
}

func (s *fakeStore) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Candidate(nil), s.candidates...), nil
}

func (s *fakeStore) ListVotes(ctx context.Context) ([]domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listVotesErr != nil {
		return nil, s.listVotesErr
	}
	return append([]domain.Vote(nil), s.votes...), nil
}

func (s *fakeStore) InsertVote(ctx context.Context, vote domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.votes = append(s.votes, vote)
	return nil
}

func (s *fakeStore) DeleteVotesByVoter(ctx context.Context, voterName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.votes[:0]
	for _, v := range s.votes {
		if v.VoterName != voterName {
			kept = append(kept, v)
		}
	}
	s.votes = kept
	return nil
}

func (s *fakeStore) SetAdminSessionToken(ctx context.Context, adminID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionErr != nil {
		return s.sessionErr
	}
	for i, a := range s.admins {
		if a.ID == adminID {
			s.admins[i].SessionToken = token
		}
	}
	return nil
}

func (s *fakeStore) voteCount(voterName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, v := range s.votes {
		if v.VoterName == voterName {
			count++
		}
	}
	return count
}

// fakeOverrides is an in-memory OverrideStore.
type fakeOverrides struct {
	mu     sync.Mutex
	tokens map[string]string
	setErr error
	getErr error
}

func newFakeOverrides() *fakeOverrides {
	return &fakeOverrides{tokens: map[string]string{}}
}

func (o *fakeOverrides) SetResetToken(ctx context.Context, voterName, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.setErr != nil {
		return o.setErr
	}
	o.tokens[voterName] = token
	return nil
}

func (o *fakeOverrides) ResetTokens(ctx context.Context) (map[string]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.getErr != nil {
		return nil, o.getErr
	}
	tokens := make(map[string]string, len(o.tokens))
	for k, v := range o.tokens {
		tokens[k] = v
	}
	return tokens, nil
}

// fakeSink records delivered messages.
type fakeSink struct {
	mu       sync.Mutex
	messages []string
	sendErr  error
}

func (s *fakeSink) Send(ctx context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *fakeSink) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// fakeFeed hands out pre-registered channels per kind.
type fakeFeed struct {
	mu           sync.Mutex
	channels     map[domain.EntityKind]chan domain.ChangeNotification
	subscribeErr error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{channels: map[domain.EntityKind]chan domain.ChangeNotification{
		domain.KindVoter: make(chan domain.ChangeNotification, 8),
		domain.KindAdmin: make(chan domain.ChangeNotification, 8),
		domain.KindVote:  make(chan domain.ChangeNotification, 8),
	}}
}

func (f *fakeFeed) Subscribe(ctx context.Context, kind domain.EntityKind) (<-chan domain.ChangeNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	return f.channels[kind], nil
}
