package redis

import (
	"context"
	"fmt"

	"github.com/adrsyn/ballotbox/internal/core/ports"
	goredis "github.com/redis/go-redis/v9"
)

// resetTokenHash is the hash holding voter name → latest reset token.
// Entries are overwritten on repeat resets and never expire.
const resetTokenHash = "voter_token_reset"

type overrideStore struct {
	client *goredis.Client
}

func NewOverrideStore(client *goredis.Client) ports.OverrideStore {
	return &overrideStore{
		client: client,
	}
}

func (s *overrideStore) SetResetToken(ctx context.Context, voterName, token string) error {
	if err := s.client.HSet(ctx, resetTokenHash, voterName, token).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (s *overrideStore) ResetTokens(ctx context.Context) (map[string]string, error) {
	tokens, err := s.client.HGetAll(ctx, resetTokenHash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reset tokens: %w", err)
	}
	return tokens, nil
}
