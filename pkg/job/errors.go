package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is returned when attempting to execute or enqueue a
	// task that has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a task payload cannot be
	// unmarshaled into the expected type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted is returned when starting a manager that is
	// already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when stopping a manager that is not
	// running.
	ErrNotStarted = errors.New("job: not started")

	// ErrPoolRequired is returned when creating a manager or enqueuer
	// without a database pool.
	ErrPoolRequired = errors.New("job: pool is required")
)
