package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache backed by Redis, serializing values with the configured
// Marshaler (JSON by default). It is the backend the service uses for API
// key lookups when a Redis URL is configured, so authentication state is
// shared across replicas.
type Redis[V any] struct {
	client    redis.UniversalClient
	opts      *redisOptions
	marshaler Marshaler[V]
}

// NewRedis creates a Redis-backed cache around an existing client, typically
// obtained from pkg/redis.Open. Pass nil for the marshaler to use JSON.
//
// Example:
//
//	client, _ := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[string](client, nil,
//	    cache.WithPrefix("apikeys"),
//	    cache.WithRedisDefaultTTL(5 * time.Minute),
//	)
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonMarshaler[V]{}
	}

	return &Redis[V]{
		client:    client,
		opts:      o,
		marshaler: m,
	}
}

// Get retrieves a value by key.
// Returns ErrNotFound if the key does not exist.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.prefixedKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	v, err := r.marshaler.Unmarshal(data)
	if err != nil {
		return zero, errors.Join(ErrUnmarshal, err)
	}

	return v, nil
}

// Set stores a value with the given TTL.
// TTL semantics: positive = expires after duration, zero = use default TTL,
// negative = no expiration (persists until deleted or evicted by Redis).
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}

	// Redis treats 0 as no expiration, which matches our negative-TTL semantic.
	redisTTL := max(ttl, 0)

	return r.client.Set(ctx, r.prefixedKey(key), data, redisTTL).Err()
}

// Delete removes a key.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefixedKey(key)).Err()
}

// Has checks whether a key exists.
func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefixedKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes all cache entries. With a prefix configured only matching
// keys are removed, using SCAN so the server is never blocked. Without a
// prefix the whole database is flushed.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.opts.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	pattern := r.opts.prefix + ":*"
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op. The Redis client lifecycle is managed by the caller
// via pkg/redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

// prefixedKey returns the full Redis key with the configured prefix.
func (r *Redis[V]) prefixedKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
