package apikey

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/depot/pkg/cache"
)

const defaultCacheTTL = 5 * time.Minute

// Service implements the key lifecycle on top of a Store, with an
// optional cache in front of authentication lookups.
type Service struct {
	store    Store
	cache    cache.Cache[string]
	cacheTTL time.Duration
	logger   *slog.Logger
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithCache fronts Authenticate with a cache mapping key hashes to client
// identities. Only successful lookups are cached; revoked and unknown
// keys always hit the store.
func WithCache(c cache.Cache[string]) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCacheTTL sets how long authenticated lookups stay cached
// (default 5 minutes). With a process-local cache this is also the upper
// bound on how long a revoked key keeps working on replicas that did not
// perform the revocation.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger for cache eviction warnings.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a key service around the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		cacheTTL: defaultCacheTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create mints a new key for a client and returns its record together
// with the plaintext. The plaintext is not recoverable afterwards.
func (s *Service) Create(ctx context.Context, clientID, name string) (Key, string, error) {
	if clientID == "" {
		return Key{}, "", ErrClientRequired
	}

	plaintext, err := newPlaintextKey()
	if err != nil {
		return Key{}, "", err
	}

	key := Key{
		ID:        uuid.New(),
		ClientID:  clientID,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, key, hashKey(plaintext)); err != nil {
		return Key{}, "", err
	}

	return key, plaintext, nil
}

// List returns all key records, newest first.
func (s *Service) List(ctx context.Context) ([]Key, error) {
	return s.store.List(ctx)
}

// Rotate replaces an active key with a fresh one for the same client in a
// single atomic step, and returns the new record with its plaintext. The
// old key stops authenticating immediately.
func (s *Service) Rotate(ctx context.Context, id uuid.UUID) (Key, string, error) {
	plaintext, err := newPlaintextKey()
	if err != nil {
		return Key{}, "", err
	}

	newKey, oldHash, err := s.store.Rotate(ctx, id, uuid.New(), hashKey(plaintext))
	if err != nil {
		return Key{}, "", err
	}
	s.evict(ctx, oldHash)

	return newKey, plaintext, nil
}

// Revoke deactivates a key. Revoked keys stop authenticating immediately
// on this instance; see WithCacheTTL for the cross-replica bound.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	hash, err := s.store.Revoke(ctx, id)
	if err != nil {
		return err
	}
	s.evict(ctx, hash)
	return nil
}

// Authenticate resolves a presented plaintext key to its client identity.
// Returns ErrKeyNotFound for unknown keys and ErrKeyRevoked for
// deactivated ones.
func (s *Service) Authenticate(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrKeyNotFound
	}

	hash := hashKey(plaintext)
	if s.cache == nil {
		return s.lookup(ctx, hash)
	}

	return cache.GetOrSet(ctx, s.cache, cacheKey(hash),
		func(ctx context.Context) (string, time.Duration, error) {
			clientID, err := s.lookup(ctx, hash)
			if err != nil {
				return "", 0, err
			}
			return clientID, s.cacheTTL, nil
		})
}

// lookup fetches the key by hash and checks its state.
func (s *Service) lookup(ctx context.Context, hash []byte) (string, error) {
	key, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	if !key.Active {
		return "", ErrKeyRevoked
	}
	return key.ClientID, nil
}

// evict drops a cached lookup after revocation or rotation.
func (s *Service) evict(ctx context.Context, hash []byte) {
	if s.cache == nil || len(hash) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(hash)); err != nil {
		s.logger.WarnContext(ctx, "failed to evict key from cache",
			slog.Any("error", err),
		)
	}
}
