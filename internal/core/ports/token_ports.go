package ports

import (
	"context"

	"github.com/adrsyn/ballotbox/internal/core/domain"
)

// TokenService resolves presented bearer tokens to identities.
type TokenService interface {
	VerifyVoter(ctx context.Context, token string) (domain.Voter, error)
	VerifyAdmin(ctx context.Context, token string) (domain.Admin, error)
}

// SessionService owns admin credential login and session issuance.
type SessionService interface {
	Login(ctx context.Context, adminID, password string) (string, error)
}
