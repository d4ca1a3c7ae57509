package apikey

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// staticKeyFile is the YAML shape of a static key file.
type staticKeyFile struct {
	Keys []staticKeyEntry `yaml:"keys"`
}

type staticKeyEntry struct {
	Key      string `yaml:"key"`
	ClientID string `yaml:"client_id"`
	Name     string `yaml:"name"`
}

// StaticStore serves API keys from a YAML file loaded once at startup.
// It covers development and bootstrap setups that run without Postgres.
// The store is read-only: Insert, Revoke, and Rotate return
// ErrReadOnlyStore.
type StaticStore struct {
	byHash map[string]Key
	keys   []Key
}

// NewStaticStore loads keys from a YAML file. Key IDs are derived from the
// key hashes, so they stay stable across restarts. Entries must have a
// non-empty key and client_id; duplicate keys are rejected.
func NewStaticStore(path string) (*StaticStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}

	var file staticKeyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}

	loadedAt := time.Now().UTC()
	store := &StaticStore{
		byHash: make(map[string]Key, len(file.Keys)),
		keys:   make([]Key, 0, len(file.Keys)),
	}

	for i, entry := range file.Keys {
		if entry.Key == "" || entry.ClientID == "" {
			return nil, fmt.Errorf("%w: entry %d: key and client_id are required", ErrInvalidKeyFile, i+1)
		}

		hash := cacheKey(hashKey(entry.Key))
		if _, exists := store.byHash[hash]; exists {
			return nil, fmt.Errorf("%w: entry %d: duplicate key", ErrInvalidKeyFile, i+1)
		}

		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("static-%d", i+1)
		}

		key := Key{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(hash)),
			ClientID:  entry.ClientID,
			Name:      name,
			Active:    true,
			CreatedAt: loadedAt,
		}
		store.byHash[hash] = key
		store.keys = append(store.keys, key)
	}

	return store, nil
}

var _ Store = (*StaticStore)(nil)

// Insert is not supported; the file is the source of truth.
func (s *StaticStore) Insert(ctx context.Context, key Key, keyHash []byte) error {
	return ErrReadOnlyStore
}

// FindByHash returns the key whose hash matches.
func (s *StaticStore) FindByHash(ctx context.Context, keyHash []byte) (Key, error) {
	key, ok := s.byHash[cacheKey(keyHash)]
	if !ok {
		return Key{}, ErrKeyNotFound
	}
	return key, nil
}

// List returns all keys in file order.
func (s *StaticStore) List(ctx context.Context) ([]Key, error) {
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out, nil
}

// Revoke is not supported; remove the entry from the file instead.
func (s *StaticStore) Revoke(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return nil, ErrReadOnlyStore
}

// Rotate is not supported; replace the entry in the file instead.
func (s *StaticStore) Rotate(ctx context.Context, id, newID uuid.UUID, newHash []byte) (Key, []byte, error) {
	return Key{}, nil, ErrReadOnlyStore
}
