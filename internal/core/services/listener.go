package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// ListenerState tracks one subscription's lifecycle.
type ListenerState int

const (
	StateSubscribing ListenerState = iota
	StateListening
	// StateFailed is terminal: the subscription is not restarted and
	// the cache silently stops receiving updates for that kind.
	StateFailed
)

// ChangeListener keeps the state cache fresh from the backing store's
// change feed and sources live vote events for the broadcast hub. One
// long-lived task runs per entity kind; candidates are effectively
// static and have no subscription.
type ChangeListener struct {
	feed   ports.ChangeFeed
	cache  *StateCache
	hub    *Hub
	logger *slog.Logger

	mu     sync.Mutex
	states map[domain.EntityKind]ListenerState
}

func NewChangeListener(feed ports.ChangeFeed, cache *StateCache, hub *Hub, logger *slog.Logger) *ChangeListener {
	return &ChangeListener{
		feed:   feed,
		cache:  cache,
		hub:    hub,
		logger: logger,
		states: map[domain.EntityKind]ListenerState{},
	}
}

// Start launches the subscription tasks. They run until ctx is
// cancelled or their stream terminates.
func (l *ChangeListener) Start(ctx context.Context) {
	go l.run(ctx, domain.KindVoter, func(domain.ChangeNotification) {
		l.cache.RefreshVoters(ctx)
		l.logger.Info("voter data refreshed from change notification")
	})
	go l.run(ctx, domain.KindAdmin, func(domain.ChangeNotification) {
		l.cache.RefreshAdmins(ctx)
		l.logger.Info("admin data refreshed from change notification")
	})
	go l.run(ctx, domain.KindVote, func(n domain.ChangeNotification) {
		if err := l.cache.RefreshVotes(ctx); err != nil {
			l.logger.Error("vote refresh failed, keeping previous snapshot", "error", err)
		}
		l.hub.Broadcast(ctx, domain.VoteEvent{
			Action:        n.Action,
			VoterName:     n.Vote.VoterName,
			CandidateName: n.Vote.CandidateName,
		})
		l.logger.Info("vote data refreshed from change notification", "action", string(n.Action))
	})
}

func (l *ChangeListener) run(ctx context.Context, kind domain.EntityKind, handle func(domain.ChangeNotification)) {
	l.setState(kind, StateSubscribing)

	notifications, err := l.feed.Subscribe(ctx, kind)
	if err != nil {
		l.logger.Error("failed to subscribe to change feed", "kind", string(kind), "error", err)
		l.setState(kind, StateFailed)
		return
	}
	l.setState(kind, StateListening)

	for n := range notifications {
		handle(n)
	}

	// The stream ended; this kind no longer refreshes until restart.
	l.logger.Error("change feed subscription ended", "kind", string(kind))
	l.setState(kind, StateFailed)
}

func (l *ChangeListener) State(kind domain.EntityKind) ListenerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[kind]
}

func (l *ChangeListener) setState(kind domain.EntityKind, state ListenerState) {
	l.mu.Lock()
	l.states[kind] = state
	l.mu.Unlock()
}
