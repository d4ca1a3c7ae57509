package cache

import "time"

// redisOptions holds configuration for the Redis-backed cache.
type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

// defaultRedisOptions returns Redis cache options with a 5 minute TTL
// and no key prefix.
func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		defaultTTL: 5 * time.Minute,
	}
}

// RedisOption configures the Redis-backed cache.
type RedisOption func(*redisOptions)

// WithRedisDefaultTTL sets the TTL applied when Set is called with a zero TTL.
func WithRedisDefaultTTL(ttl time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.defaultTTL = ttl
	}
}

// WithPrefix namespaces all keys under "prefix:". Keeps cache entries from
// colliding with other users of the same Redis database and scopes Clear
// to this cache's keys only.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}
