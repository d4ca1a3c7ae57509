// Package cache provides a generic key-value cache with TTL support.
//
// The depot service fronts API key authentication with it: key lookups hit
// Postgres (or the static key file) once and are then served from cache
// until the entry expires or the key is revoked.
//
// Two backends implement the same Cache[V] interface:
//
//   - Memory: in-process map with TTL expiration and optional LRU eviction.
//     The default for single-instance deployments and development.
//   - Redis: shared cache for multi-instance deployments, so a key rotation
//     on one instance invalidates lookups on all of them.
//
// # Usage
//
//	c := cache.NewMemory[string](
//		cache.WithDefaultTTL(5*time.Minute),
//		cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
//
// GetOrSet computes a value on miss, deduplicating concurrent lookups for
// the same key via singleflight:
//
//	clientID, err := cache.GetOrSet(ctx, c, keyHash, func(ctx context.Context) (string, time.Duration, error) {
//		id, err := store.Lookup(ctx, keyHash)
//		return id, 5 * time.Minute, err
//	})
//
// # TTL Semantics
//
// Set interprets the TTL as: positive = expires after the duration, zero =
// use the backend's configured default, negative = never expires.
package cache
