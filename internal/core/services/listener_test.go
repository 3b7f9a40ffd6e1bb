package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteNotificationRefreshesAndBroadcasts(t *testing.T) {
	store := electionStore()
	cache := NewStateCache(store, testLogger())
	require.NoError(t, cache.LoadAll(context.Background()))

	hub := NewHub(testLogger())
	sink := &fakeSink{}
	hub.Register("observer", sink)

	feed := newFakeFeed()
	listener := NewChangeListener(feed, cache, hub, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener.Start(ctx)

	// A vote lands in the store, then its notification arrives.
	store.mu.Lock()
	store.votes = append(store.votes, domain.Vote{VoterName: "Alice", CandidateName: "Carol"})
	store.mu.Unlock()

	feed.channels[domain.KindVote] <- domain.ChangeNotification{
		Action: domain.ActionCreate,
		Vote:   domain.Vote{VoterName: "Alice", CandidateName: "Carol"},
	}

	require.Eventually(t, func() bool {
		_, voted := cache.VotedCandidate("Alice")
		return voted && len(sink.received()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"v-c:Alice,Carol"}, sink.received())
	assert.Equal(t, int64(1), cache.TallyByCampus()[domain.CampusMM]["Carol"])
}

func TestVoterNotificationRefreshesCache(t *testing.T) {
	store := electionStore()
	cache := NewStateCache(store, testLogger())
	require.NoError(t, cache.LoadAll(context.Background()))

	feed := newFakeFeed()
	listener := NewChangeListener(feed, cache, NewHub(testLogger()), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener.Start(ctx)

	store.mu.Lock()
	store.voters = append(store.voters, domain.Voter{Token: "tok-eve", Name: "Eve", Campus: domain.CampusPD})
	store.mu.Unlock()

	feed.channels[domain.KindVoter] <- domain.ChangeNotification{Action: domain.ActionCreate}

	require.Eventually(t, func() bool {
		_, ok := cache.VoterByName("Eve")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribeFailureIsTerminal(t *testing.T) {
	store := electionStore()
	cache := NewStateCache(store, testLogger())
	require.NoError(t, cache.LoadAll(context.Background()))

	feed := newFakeFeed()
	feed.subscribeErr = errors.New("stream unavailable")
	listener := NewChangeListener(feed, cache, NewHub(testLogger()), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener.Start(ctx)

	require.Eventually(t, func() bool {
		return listener.State(domain.KindVoter) == StateFailed &&
			listener.State(domain.KindAdmin) == StateFailed &&
			listener.State(domain.KindVote) == StateFailed
	}, time.Second, 5*time.Millisecond)
}

func TestStreamTerminationIsTerminalAndNotRestarted(t *testing.T) {
	store := electionStore()
	cache := NewStateCache(store, testLogger())
	require.NoError(t, cache.LoadAll(context.Background()))

	feed := newFakeFeed()
	listener := NewChangeListener(feed, cache, NewHub(testLogger()), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener.Start(ctx)

	require.Eventually(t, func() bool {
		return listener.State(domain.KindVoter) == StateListening &&
			listener.State(domain.KindVote) == StateListening
	}, time.Second, 5*time.Millisecond)

	close(feed.channels[domain.KindVoter])

	require.Eventually(t, func() bool {
		return listener.State(domain.KindVoter) == StateFailed
	}, time.Second, 5*time.Millisecond)

	// Other subscriptions keep running.
	assert.Equal(t, StateListening, listener.State(domain.KindVote))

	// The failed kind stops refreshing; a store change is not picked up.
	store.mu.Lock()
	store.voters = append(store.voters, domain.Voter{Token: "tok-eve", Name: "Eve", Campus: domain.CampusPD})
	store.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	_, ok := cache.VoterByName("Eve")
	assert.False(t, ok)
}
