package job

import (
	"context"
	"log/slog"
)

// config holds job manager configuration.
type config struct {
	registry   *taskRegistry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
}

// newConfig creates a config with defaults.
func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

// scheduledHandler is the handler signature for scheduled tasks.
type scheduledHandler func(context.Context) error

// scheduleConfig holds one scheduled task registration.
type scheduleConfig struct {
	handler  scheduledHandler
	name     string
	schedule string
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task handler using structural typing.
// The task must implement Name() and Handle(ctx, P) methods; the payload
// type P is inferred from the Handle signature.
//
// Example:
//
//	job.WithTask(jobs.NewReplicateFile(mirror))
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		wrapper := newTaskWrapper[P, T](task)
		c.registry.register(task.Name(), wrapper)
	}
}

// WithScheduledTask registers a periodic task using structural typing.
// The task must implement Name(), Schedule(), and Handle(ctx) methods.
// Schedule() returns a cron expression (5 fields: min hour day month weekday).
//
// Example:
//
//	job.WithScheduledTask(jobs.NewReconcileMirror(mirror, "0 3 * * *", log))
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue configures a named queue with the specified worker count.
// Tasks default to the default queue otherwise.
//
// Example:
//
//	job.WithQueue("mirror", 10)
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count for the default queue.
// Defaults to 100 if not set.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
