// Package redis opens and manages the Redis connection used by the depot
// service to cache API key lookups.
//
// It wraps [github.com/redis/go-redis/v9] with retry-based connection
// establishment, a health check closure for readiness probes, and a
// shutdown hook. Both redis:// and rediss:// (TLS) URL schemes are
// supported.
//
// # Usage
//
//	client, err := redis.Open(ctx, cfg.RedisURL,
//		redis.WithPoolSize(20),
//		redis.WithRetry(5, 3*time.Second),
//	)
//	if err != nil {
//		return err
//	}
//
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
//	hooks = append(hooks, redis.Shutdown(client))
package redis
