package depot

import "errors"

// Sentinel errors for storage operations.
var (
	// Configuration errors.
	ErrInvalidConfig = errors.New("depot: invalid configuration")

	// Argument errors. ErrInvalidPath covers traversal attempts and
	// malformed identifiers; it is distinct from ErrNotFound so callers can
	// tell "no such file" from "disallowed path".
	ErrInvalidPath = errors.New("depot: invalid path")
	ErrInvalidName = errors.New("depot: invalid file name")

	// Lookup errors.
	ErrNotFound = errors.New("depot: file not found")

	// Validation errors.
	ErrFileTooLarge = errors.New("depot: file exceeds size limit")
	ErrFileTooSmall = errors.New("depot: file below minimum size")
	ErrInvalidMIME  = errors.New("depot: file type not allowed")
	ErrEmptyFile    = errors.New("depot: file is empty")

	// I/O faults. Always wrapped with the underlying cause; the cause may
	// contain filesystem paths and must not be exposed to API clients.
	ErrSaveFailed   = errors.New("depot: save failed")
	ErrListFailed   = errors.New("depot: list failed")
	ErrInfoFailed   = errors.New("depot: file info failed")
	ErrDeleteFailed = errors.New("depot: delete failed")

	// ErrStorageUnavailable is reported by the healthcheck when the root
	// directory is missing or not writable.
	ErrStorageUnavailable = errors.New("depot: storage unavailable")
)
