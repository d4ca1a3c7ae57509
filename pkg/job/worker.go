package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
)

// depotTaskArgs is the single River job arguments type for all tasks.
// Every task shares one River kind; the task name in the arguments selects
// the registered handler.
type depotTaskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (depotTaskArgs) Kind() string {
	return "depot:task"
}

// depotTaskWorker dispatches every job to its registered executor.
type depotTaskWorker struct {
	river.WorkerDefaults[depotTaskArgs]
	registry *taskRegistry
	logger   *slog.Logger
}

func (w *depotTaskWorker) Work(ctx context.Context, job *river.Job[depotTaskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok || executor == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName)
	}

	w.logger.DebugContext(ctx, "executing task",
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)

	if err := executor.Execute(ctx, job.Args.Payload); err != nil {
		w.logger.ErrorContext(ctx, "task failed",
			slog.String("task", job.Args.TaskName),
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Any("error", err),
		)
		return err
	}

	w.logger.DebugContext(ctx, "task completed",
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
	)

	return nil
}

// cronScheduleAdapter bridges robfig/cron schedules to River's
// PeriodicSchedule interface.
type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

// parseCronSchedule parses a standard 5-field cron expression
// (minute hour day month weekday).
func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
