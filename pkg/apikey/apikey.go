package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// keyPrefix marks plaintext keys so they are recognizable in configs and
// leak scanners without revealing anything about the value.
const keyPrefix = "dk_"

// Key is the metadata record for one API key. The key material itself is
// never part of the record; only its hash is stored, and only the stores
// see hashes.
type Key struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  string     `json:"clientId"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// newPlaintextKey generates a new random key: the prefix plus 64 hex
// characters (256 bits of entropy).
func newPlaintextKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("apikey: generate key: %w", err)
	}
	return keyPrefix + hex.EncodeToString(buf), nil
}

// hashKey returns the SHA-256 digest of a plaintext key. All lookups and
// persistence use this digest.
func hashKey(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return sum[:]
}

// cacheKey renders a key hash as the cache lookup key.
func cacheKey(hash []byte) string {
	return hex.EncodeToString(hash)
}
