// Package id generates sortable opaque identifiers.
//
// The depot service uses ULIDs for request tracing IDs, where chronological
// ordering in logs is useful.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID generates a ULID (Universally Unique Lexicographically Sortable
// Identifier): 26 characters, 10 encoding a 48-bit millisecond timestamp and
// 16 encoding 80 bits of randomness. IDs sort by creation time.
func NewULID() string {
	ms := uint64(time.Now().UnixMilli())

	entropy := make([]byte, 10)
	if _, err := rand.Read(entropy); err != nil {
		// Fallback: time-based entropy (degraded but functional).
		binary.BigEndian.PutUint64(entropy[:8], uint64(time.Now().UnixNano()))
	}

	var ulid [26]byte

	// Timestamp: 48 bits, 10 base32 chars, most significant first.
	ts := ms
	for i := 9; i >= 0; i-- {
		ulid[i] = crockfordBase32[ts&0x1F]
		ts >>= 5
	}

	// Entropy: 80 bits consumed 5 at a time, exactly 16 chars.
	var acc uint32
	var bits uint
	pos := 10
	for _, b := range entropy {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			ulid[pos] = crockfordBase32[(acc>>bits)&0x1F]
			pos++
		}
	}

	return string(ulid[:])
}
