//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/depot/pkg/cache"
	"github.com/dmitrymomot/depot/pkg/redis"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})

	return client
}

// --- Redis: Get / Set ---

func TestRedis_GetSet(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("test-get-miss"))

		_, err := c.Get(context.Background(), "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("stores and retrieves value", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("test-get-hit"))

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "keyhash", "acme-corp", time.Minute))

		val, err := c.Get(ctx, "keyhash")
		require.NoError(t, err)
		require.Equal(t, "acme-corp", val)
	})

	t.Run("returns ErrNotFound for expired key", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("test-get-expired"))

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "value", 50*time.Millisecond))

		time.Sleep(100 * time.Millisecond)

		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("zero TTL uses default", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil,
			cache.WithPrefix("test-set-default-ttl"),
			cache.WithRedisDefaultTTL(100*time.Millisecond),
		)

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "value", 0))

		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "value", val)

		time.Sleep(200 * time.Millisecond)

		_, err = c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative TTL persists indefinitely", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil,
			cache.WithPrefix("test-set-no-expire"),
			cache.WithRedisDefaultTTL(50*time.Millisecond),
		)

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "forever", -1))

		time.Sleep(100 * time.Millisecond)

		val, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "forever", val)
	})

	t.Run("stores struct values", func(t *testing.T) {
		t.Parallel()

		type record struct {
			ClientID string `json:"client_id"`
			Active   bool   `json:"active"`
		}

		client := newTestRedisClient(t)
		c := cache.NewRedis[record](client, nil, cache.WithPrefix("test-set-struct"))

		ctx := context.Background()
		r := record{ClientID: "acme-corp", Active: true}
		require.NoError(t, c.Set(ctx, "rec", r, time.Minute))

		val, err := c.Get(ctx, "rec")
		require.NoError(t, err)
		require.Equal(t, r, val)
	})
}

// --- Redis: Delete / Has ---

func TestRedis_DeleteHas(t *testing.T) {
	t.Parallel()

	t.Run("removes existing key", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("test-del"))

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
		require.NoError(t, c.Delete(ctx, "key"))

		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("delete ignores missing key", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("test-del-miss"))

		require.NoError(t, c.Delete(context.Background(), "missing"))
	})

	t.Run("has reports existence", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c := cache.NewRedis[string](client, nil, cache.WithPrefix("test-has"))

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

		has, err := c.Has(ctx, "key")
		require.NoError(t, err)
		require.True(t, has)

		has, err = c.Has(ctx, "missing")
		require.NoError(t, err)
		require.False(t, has)
	})
}

// --- Redis: Clear / Prefix isolation ---

func TestRedis_Clear(t *testing.T) {
	t.Parallel()

	t.Run("clears only prefixed keys", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c1 := cache.NewRedis[string](client, nil, cache.WithPrefix("test-clear-ns1"))
		c2 := cache.NewRedis[string](client, nil, cache.WithPrefix("test-clear-ns2"))

		ctx := context.Background()
		require.NoError(t, c1.Set(ctx, "a", "1", time.Minute))
		require.NoError(t, c1.Set(ctx, "b", "2", time.Minute))
		require.NoError(t, c2.Set(ctx, "c", "3", time.Minute))

		require.NoError(t, c1.Clear(ctx))

		has, err := c1.Has(ctx, "a")
		require.NoError(t, err)
		require.False(t, has, "ns1:a should be cleared")

		has, err = c2.Has(ctx, "c")
		require.NoError(t, err)
		require.True(t, has, "ns2:c should still exist")
	})
}

func TestRedis_Prefix(t *testing.T) {
	t.Parallel()

	t.Run("different prefixes are isolated", func(t *testing.T) {
		t.Parallel()

		client := newTestRedisClient(t)
		c1 := cache.NewRedis[string](client, nil, cache.WithPrefix("test-prefix-iso1"))
		c2 := cache.NewRedis[string](client, nil, cache.WithPrefix("test-prefix-iso2"))

		ctx := context.Background()
		require.NoError(t, c1.Set(ctx, "key", "from-c1", time.Minute))
		require.NoError(t, c2.Set(ctx, "key", "from-c2", time.Minute))

		v1, err := c1.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "from-c1", v1)

		v2, err := c2.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "from-c2", v2)
	})
}
