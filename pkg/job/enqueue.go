package job

import "time"

// enqueueConfig holds options for enqueueing a job.
type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption configures job enqueueing.
type EnqueueOption func(*enqueueConfig)

// InQueue specifies which queue to use for the job.
// If not specified, the default queue is used.
//
// Example:
//
//	m.Enqueue(ctx, "mirror:replicate", payload, job.InQueue("mirror"))
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt schedules the job to run at a specific time.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// ScheduledIn schedules the job to run after a duration.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts sets the maximum number of retry attempts. Defaults to
// River's default (25 attempts).
//
// Example:
//
//	m.Enqueue(ctx, "mirror:replicate", payload, job.MaxAttempts(5))
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor ensures only one job with this key exists for the specified
// duration. A duplicate enqueue within the window is skipped. Combined
// with UniqueKey this collapses repeated replication requests for the
// same file into one queued job.
//
// Example:
//
//	m.Enqueue(ctx, "mirror:replicate", payload,
//	    job.UniqueFor(time.Minute),
//	    job.UniqueKey(relPath))
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

// UniqueKey sets a custom key for deduplication. If not set, River
// generates a key from the job arguments.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}

// Priority sets the job priority. Lower numbers are processed first;
// defaults to 1.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		c.priority = p
	}
}

// Tags adds metadata tags to the job for filtering and debugging.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}
