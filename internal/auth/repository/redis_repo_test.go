package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRateLimitRepository_IncrementAndCheck(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewRateLimitRepository(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.IncrementAndCheck(ctx, "login:a@b.co", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := repo.IncrementAndCheck(ctx, "login:a@b.co", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:login:a@b.co"))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = repo.IncrementAndCheck(ctx, "login:a@b.co", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "window expired")

	require.NoError(t, repo.Reset(ctx, "login:a@b.co"))
	assert.False(t, mr.Exists("ratelimit:login:a@b.co"))
}

func TestRevocationRepository_RevokeAndCheck(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewRevocationRepository(client)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-1", "user-1", time.Hour))

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Hour, mr.TTL("auth:revoked:jti-1"))

	mr.FastForward(time.Hour + time.Second)
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry expires with the token")
}

func TestRevocationRepository_PublishesToSubscribers(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewRevocationRepository(client)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "session:revoked:user-7")
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, repo.Revoke(ctx, "jti-9", "user-7", time.Minute))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "session:revoked:user-7", msg.Channel)
		assert.Equal(t, "jti-9", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("revocation was not published")
	}
}
