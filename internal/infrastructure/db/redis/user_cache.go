package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

const defaultCacheTTL = 5 * time.Minute

// UserCache is a read-through cache of users keyed by id.
// Key format: user:<id>
type UserCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewUserCache creates a UserCache wrapping the given Redis client.
// A non-positive ttl falls back to five minutes.
func NewUserCache(client redis.Cmdable, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

// Get returns nil, nil on a miss. Cached users never carry a password hash.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &user, nil
}

// Set stores u until the TTL expires.
func (c *UserCache) Set(ctx context.Context, u *domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(u.ID), raw, c.ttl).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *UserCache) key(id string) string {
	return fmt.Sprintf("user:%s", id)
}
