package apikey

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the persistence interface for API keys. The store works
// with key hashes only; plaintext keys never reach this layer.
type Store interface {
	// Insert persists a new key with its hash.
	Insert(ctx context.Context, key Key, keyHash []byte) error

	// FindByHash returns the key whose hash matches, regardless of its
	// active state. Returns ErrKeyNotFound when no key matches.
	FindByHash(ctx context.Context, keyHash []byte) (Key, error)

	// List returns all keys, newest first. Hashes are never included.
	List(ctx context.Context) ([]Key, error)

	// Revoke deactivates a key and returns its hash so cached lookups
	// can be evicted. Returns ErrKeyNotFound for unknown or already
	// revoked keys.
	Revoke(ctx context.Context, id uuid.UUID) ([]byte, error)

	// Rotate atomically revokes the key and inserts a replacement with
	// the same client and name under newID/newHash. Returns the new key
	// and the revoked key's hash. Returns ErrKeyNotFound when id does
	// not name an active key.
	Rotate(ctx context.Context, id, newID uuid.UUID, newHash []byte) (Key, []byte, error)
}
