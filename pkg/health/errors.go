package health

import "errors"

// Sentinel errors for the health package.
var (
	// ErrCheckFailed is returned when one or more health checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported for a check that did not finish within
	// the configured timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
