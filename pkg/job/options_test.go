package job

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optionsTestTask implements the task interface.
type optionsTestTask struct{}

func (t *optionsTestTask) Name() string { return "options_test" }

func (t *optionsTestTask) Handle(ctx context.Context, p struct{}) error {
	return nil
}

// sweepTestTask implements the scheduled task interface.
type sweepTestTask struct {
	schedule string
}

func (t *sweepTestTask) Name() string     { return "storage:sweep_temp" }
func (t *sweepTestTask) Schedule() string { return t.schedule }

func (t *sweepTestTask) Handle(ctx context.Context) error {
	return nil
}

func TestWithTask(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	opt := WithTask[struct{}, *optionsTestTask](&optionsTestTask{})
	opt(cfg)

	executor, ok := cfg.registry.get("options_test")
	assert.True(t, ok)
	assert.NotNil(t, executor)
}

func TestWithScheduledTask(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	opt := WithScheduledTask[*sweepTestTask](&sweepTestTask{schedule: "*/30 * * * *"})
	opt(cfg)

	require.Len(t, cfg.schedules, 1)
	assert.Equal(t, "storage:sweep_temp", cfg.schedules[0].name)
	assert.Equal(t, "*/30 * * * *", cfg.schedules[0].schedule)
	assert.NotNil(t, cfg.schedules[0].handler)
}

func TestWithQueue(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	WithQueue("mirror", 10)(cfg)
	assert.Equal(t, 10, cfg.queues["mirror"])

	WithQueue("broken", 0)(cfg)
	_, ok := cfg.queues["broken"]
	assert.False(t, ok, "queue with 0 workers should not be added")

	WithQueue("negative", -5)(cfg)
	_, ok = cfg.queues["negative"]
	assert.False(t, ok, "queue with negative workers should not be added")
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	WithLogger(logger)(cfg)
	assert.Same(t, logger, cfg.logger)

	WithLogger(nil)(cfg)
	assert.Same(t, logger, cfg.logger, "nil logger should not override")
}

func TestWithMaxWorkers(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	WithMaxWorkers(50)(cfg)
	assert.Equal(t, 50, cfg.maxWorkers)

	WithMaxWorkers(0)(cfg)
	assert.Equal(t, 50, cfg.maxWorkers, "zero should not override")

	WithMaxWorkers(-10)(cfg)
	assert.Equal(t, 50, cfg.maxWorkers, "negative should not override")
}

func TestEnqueueOptions(t *testing.T) {
	t.Parallel()

	t.Run("individual options", func(t *testing.T) {
		t.Parallel()

		cfg := &enqueueConfig{}

		InQueue("mirror")(cfg)
		assert.Equal(t, "mirror", cfg.queue)

		InQueue("")(cfg)
		assert.Equal(t, "mirror", cfg.queue, "empty name should not override")

		future := time.Now().Add(24 * time.Hour)
		ScheduledAt(future)(cfg)
		require.NotNil(t, cfg.scheduledAt)
		assert.Equal(t, future, *cfg.scheduledAt)

		MaxAttempts(5)(cfg)
		assert.Equal(t, 5, cfg.maxAttempts)

		MaxAttempts(0)(cfg)
		assert.Equal(t, 5, cfg.maxAttempts, "zero should not override")

		UniqueFor(time.Hour)(cfg)
		assert.Equal(t, time.Hour, cfg.uniqueFor)

		UniqueKey("acme/u42/file.pdf")(cfg)
		assert.Equal(t, "acme/u42/file.pdf", cfg.uniqueKey)

		Priority(2)(cfg)
		assert.Equal(t, 2, cfg.priority)

		Tags("mirror", "replicate")(cfg)
		assert.Equal(t, []string{"mirror", "replicate"}, cfg.tags)
	})

	t.Run("ScheduledIn computes absolute time", func(t *testing.T) {
		t.Parallel()

		cfg := &enqueueConfig{}

		before := time.Now()
		ScheduledIn(time.Hour)(cfg)
		after := time.Now()

		require.NotNil(t, cfg.scheduledAt)
		assert.True(t, cfg.scheduledAt.After(before.Add(time.Hour-time.Second)))
		assert.True(t, cfg.scheduledAt.Before(after.Add(time.Hour+time.Second)))
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := newConfig()

	assert.NotNil(t, cfg.registry)
	assert.NotNil(t, cfg.queues)
	assert.Empty(t, cfg.schedules)
	assert.Nil(t, cfg.logger)
	assert.Equal(t, 0, cfg.maxWorkers)
}
