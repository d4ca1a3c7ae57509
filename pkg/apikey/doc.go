// Package apikey manages the client API keys that gate access to the file
// API. A key maps to exactly one client identity; callers authenticate
// with the plaintext key and all storage operations run in that client's
// namespace.
//
// Keys are random 256-bit values with a "dk_" prefix. Only the SHA-256
// hash is persisted; the plaintext is returned exactly once, at creation
// or rotation, and cannot be recovered afterwards.
//
// # Stores
//
// [PostgresStore] persists keys in the api_keys table and supports the
// full lifecycle (create, list, rotate, revoke). [StaticStore] loads keys
// from a YAML file for development and bootstrap setups without Postgres;
// it authenticates and lists but rejects mutations with [ErrReadOnlyStore].
//
// Static key file format:
//
//	keys:
//	  - key: dk_2f8a...
//	    client_id: acme-corp
//	    name: local dev
//
// # Usage
//
//	store := apikey.NewPostgresStore(pool)
//	svc := apikey.NewService(store,
//	    apikey.WithCache(keyCache),
//	    apikey.WithCacheTTL(5*time.Minute),
//	)
//
//	key, plaintext, err := svc.Create(ctx, "acme-corp", "production")
//	// plaintext is shown once and never stored
//
//	clientID, err := svc.Authenticate(ctx, presentedKey)
//
// Authenticate fronts the store with a cache keyed by the key hash, so the
// hot path normally costs one hash plus one cache hit. Revocation and
// rotation evict the cached entry.
package apikey
