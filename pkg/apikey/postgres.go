package apikey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/depot/pkg/db"
)

// PostgresStore persists API keys in the api_keys table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool. The api_keys
// table must exist; the service runs migrations at startup.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

const keyColumns = "id, client_id, name, active, created_at, revoked_at"

// Insert persists a new key with its hash.
func (s *PostgresStore) Insert(ctx context.Context, key Key, keyHash []byte) error {
	const q = `
		INSERT INTO api_keys (id, client_id, name, key_hash, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q, key.ID, key.ClientID, key.Name, keyHash, key.Active, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert: %v", ErrStoreFailed, err)
	}
	return nil
}

// FindByHash returns the key whose hash matches, regardless of active
// state.
func (s *PostgresStore) FindByHash(ctx context.Context, keyHash []byte) (Key, error) {
	q := `SELECT ` + keyColumns + ` FROM api_keys WHERE key_hash = $1`

	key, err := scanKey(s.pool.QueryRow(ctx, q, keyHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return Key{}, ErrKeyNotFound
	}
	if err != nil {
		return Key{}, fmt.Errorf("%w: find: %v", ErrStoreFailed, err)
	}
	return key, nil
}

// List returns all keys, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Key, error) {
	q := `SELECT ` + keyColumns + ` FROM api_keys ORDER BY created_at DESC, id`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreFailed, err)
	}
	defer rows.Close()

	keys := []Key{}
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list scan: %v", ErrStoreFailed, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list rows: %v", ErrStoreFailed, err)
	}
	return keys, nil
}

// Revoke deactivates a key and returns its hash for cache eviction.
func (s *PostgresStore) Revoke(ctx context.Context, id uuid.UUID) ([]byte, error) {
	const q = `
		UPDATE api_keys
		SET active = FALSE, revoked_at = $2
		WHERE id = $1 AND active
		RETURNING key_hash`

	var hash []byte
	err := s.pool.QueryRow(ctx, q, id, time.Now().UTC()).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: revoke: %v", ErrStoreFailed, err)
	}
	return hash, nil
}

// Rotate revokes the key and inserts its replacement in one transaction,
// so no moment exists where the client has zero usable keys on a crash.
func (s *PostgresStore) Rotate(ctx context.Context, id, newID uuid.UUID, newHash []byte) (Key, []byte, error) {
	var (
		newKey  Key
		oldHash []byte
	)

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		const revokeQ = `
			UPDATE api_keys
			SET active = FALSE, revoked_at = $2
			WHERE id = $1 AND active
			RETURNING client_id, name, key_hash`

		now := time.Now().UTC()

		var clientID, name string
		err := tx.QueryRow(ctx, revokeQ, id, now).Scan(&clientID, &name, &oldHash)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrKeyNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: rotate revoke: %v", ErrStoreFailed, err)
		}

		newKey = Key{
			ID:        newID,
			ClientID:  clientID,
			Name:      name,
			Active:    true,
			CreatedAt: now,
		}

		const insertQ = `
			INSERT INTO api_keys (id, client_id, name, key_hash, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`

		if _, err := tx.Exec(ctx, insertQ, newKey.ID, newKey.ClientID, newKey.Name, newHash, newKey.Active, newKey.CreatedAt); err != nil {
			return fmt.Errorf("%w: rotate insert: %v", ErrStoreFailed, err)
		}
		return nil
	})
	if err != nil {
		return Key{}, nil, err
	}

	return newKey, oldHash, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanKey.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanKey reads one key record from a row.
func scanKey(row rowScanner) (Key, error) {
	var key Key
	err := row.Scan(&key.ID, &key.ClientID, &key.Name, &key.Active, &key.CreatedAt, &key.RevokedAt)
	return key, err
}
