package ports

import (
	"context"

	"github.com/adrsyn/ballotbox/internal/core/domain"
)

// BackingStore is the durable, authoritative store of election records.
type BackingStore interface {
	ListVoters(ctx context.Context) ([]domain.Voter, error)
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
	ListCandidates(ctx context.Context) ([]domain.Candidate, error)
	ListVotes(ctx context.Context) ([]domain.Vote, error)
	InsertVote(ctx context.Context, vote domain.Vote) error
	DeleteVotesByVoter(ctx context.Context, voterName string) error
	SetAdminSessionToken(ctx context.Context, adminID, token string) error
}

// ChangeFeed delivers push notifications for changes to a backing
// store table. The returned channel is closed when the subscription
// ends, either through ctx cancellation or an unrecoverable stream
// failure.
type ChangeFeed interface {
	Subscribe(ctx context.Context, kind domain.EntityKind) (<-chan domain.ChangeNotification, error)
}

// OverrideStore holds forced voter token resets, independent of the
// backing store. Entries map voter name to the latest reset token.
type OverrideStore interface {
	SetResetToken(ctx context.Context, voterName, token string) error
	ResetTokens(ctx context.Context) (map[string]string, error)
}
