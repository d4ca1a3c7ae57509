package depot

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"
)

// Stored name format: <timestamp>_<disambiguator>_<originalName>.
// The timestamp sorts chronologically and the random disambiguator keeps two
// uploads of the same name in the same instant from colliding.
const (
	nameSeparator = "_"

	// storedNameLayout is RFC 3339 with milliseconds and path-hostile colons
	// replaced by dashes. It contains no separator character, so the first
	// two tokens of a stored name are always timestamp and disambiguator.
	storedNameLayout = "2006-01-02T15-04-05.000Z07:00"

	// disambiguatorBytes yields 8 hex characters.
	disambiguatorBytes = 4
)

// newStoredName builds a unique on-disk name for an already sanitized
// original filename.
func newStoredName(originalName string) string {
	ts := time.Now().UTC().Format(storedNameLayout)
	return ts + nameSeparator + randomHex(disambiguatorBytes) + nameSeparator + originalName
}

// OriginalName recovers the uploader-supplied filename from a stored name.
// Names with fewer than three tokens (legacy or foreign files) are returned
// unchanged; OriginalName never fails.
func OriginalName(storedName string) string {
	parts := strings.Split(storedName, nameSeparator)
	if len(parts) < 3 {
		return storedName
	}
	return strings.Join(parts[2:], nameSeparator)
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// Fallback: time-based entropy (degraded but functional).
		seed := make([]byte, 8)
		binary.BigEndian.PutUint64(seed, uint64(time.Now().UnixNano()))
		copy(b, seed)
	}
	return hex.EncodeToString(b)
}

// sanitizeOriginalName strips any directory part a client may have sent
// along with the filename and rejects names that cannot form a single path
// segment.
func sanitizeOriginalName(name string) (string, error) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	if strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	return name, nil
}
