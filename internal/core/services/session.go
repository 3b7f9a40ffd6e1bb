package services

import (
	"context"
	"log/slog"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// AdminSession verifies admin credentials against the cached admin
// table and issues session tokens.
type AdminSession struct {
	store  ports.BackingStore
	cache  *StateCache
	logger *slog.Logger
}

func NewAdminSession(store ports.BackingStore, cache *StateCache, logger *slog.Logger) *AdminSession {
	return &AdminSession{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Login checks the credentials and returns a fresh session token. The
// token is patched into the cache immediately so it authenticates on
// the next request; the durable write is best-effort and a failure is
// only logged, since the cached copy already serves verification.
func (s *AdminSession) Login(ctx context.Context, adminID, password string) (string, error) {
	admin, ok := s.cache.AdminByID(adminID)
	if !ok || admin.Password != password {
		return "", domain.ErrUnauthorized
	}

	token := NewSessionToken()
	s.cache.SetAdminSessionToken(adminID, token)

	if err := s.store.SetAdminSessionToken(ctx, adminID, token); err != nil {
		s.logger.Error("failed to persist admin session token", "admin_id", adminID, "error", err)
	}

	s.logger.Info("admin logged in", "admin_id", adminID)
	return token, nil
}
