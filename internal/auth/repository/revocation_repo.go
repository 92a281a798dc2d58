package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedTokenPrefix   = "auth:revoked:"    // auth:revoked:{jti} -> user_id
	sessionChannelPrefix = "session:revoked:" // pub/sub channel per user
)

// RevocationRepository stores logged-out token ids until they would have expired anyway,
// and announces each logout on the user's session channel.
type RevocationRepository struct {
	client *redis.Client
}

func NewRevocationRepository(client *redis.Client) *RevocationRepository {
	return &RevocationRepository{client: client}
}

func (r *RevocationRepository) Revoke(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, revokedTokenPrefix+tokenID, userID, ttl)
	pipe.Publish(ctx, sessionChannelPrefix+userID, tokenID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
