package apikey

import "errors"

// API key errors.
var (
	// ErrKeyNotFound is returned when no key matches a lookup. Unknown
	// plaintext keys authenticate to this error as well.
	ErrKeyNotFound = errors.New("apikey: key not found")

	// ErrKeyRevoked is returned when a presented key exists but has been
	// deactivated.
	ErrKeyRevoked = errors.New("apikey: key revoked")

	// ErrClientRequired is returned when creating a key without a client
	// identity.
	ErrClientRequired = errors.New("apikey: client id required")

	// ErrReadOnlyStore is returned by stores that cannot mutate keys,
	// such as the static file store.
	ErrReadOnlyStore = errors.New("apikey: store is read-only")

	// ErrInvalidKeyFile is returned when the static key file cannot be
	// parsed or contains invalid entries.
	ErrInvalidKeyFile = errors.New("apikey: invalid key file")

	// ErrStoreFailed wraps storage-level faults. The cause may contain
	// connection details and must not reach API clients.
	ErrStoreFailed = errors.New("apikey: store operation failed")
)
