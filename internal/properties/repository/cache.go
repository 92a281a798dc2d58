package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
)

const (
	listingVersionKey  = "listings:version"
	listingCachePrefix = "listings:v"
	defaultListingTTL  = 2 * time.Minute
)

// ListingCache caches public listing queries. Invalidate bumps a generation counter so
// every cached query becomes unreachable at once.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = defaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Get looks key up under the current generation and returns that generation, so a
// caller filling a miss can pass it to Set.
func (c *ListingCache) Get(ctx context.Context, key string) ([]domain.Property, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if err == redis.Nil {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("get cached listings: %w", err)
	}

	var out []domain.Property
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, gen, false, fmt.Errorf("unmarshal cached listings: %w", err)
	}
	return out, gen, true, nil
}

// Set stores props under gen. Rows read before an Invalidate land in the old
// generation and are never served.
func (c *ListingCache) Set(ctx context.Context, key string, gen int64, props []domain.Property) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshal listings: %w", err)
	}
	return c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err()
}

func (c *ListingCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, listingVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("get listing version: %w", err)
	}
	return gen, nil
}

func (c *ListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, listingVersionKey).Err(); err != nil {
		return fmt.Errorf("invalidate listings: %w", err)
	}
	return nil
}

func (c *ListingCache) key(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", listingCachePrefix, gen, key)
}
