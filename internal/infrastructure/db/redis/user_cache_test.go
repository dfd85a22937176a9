package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

func TestUserCache_Key(t *testing.T) {
	c := NewUserCache(nil, 0)
	assert.Equal(t, "user:507f1f77bcf86cd799439011", c.key("507f1f77bcf86cd799439011"))
	assert.Equal(t, defaultCacheTTL, c.ttl)
}

func TestUserCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewUserCache(client, time.Minute)

	u, err := c.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.Nil(t, u)
}

// TestUserCache_Integration runs against a real server when REDIS_TEST_ADDR
// is set, e.g. localhost:6379.
func TestUserCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewUserCache(client, time.Minute)
	id := "507f1f77bcf86cd799439011"
	t.Cleanup(func() { _ = c.Invalidate(ctx, id) })

	miss, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.Set(ctx, &domain.User{ID: id, Username: "alice", PasswordHash: "secret", Roles: []string{"ADMIN"}}))

	hit, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "alice", hit.Username)
	assert.Equal(t, []string{"ADMIN"}, hit.Roles)
	assert.Empty(t, hit.PasswordHash)

	ttl, err := client.TTL(ctx, c.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, id))
	miss, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, miss)
}
