package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/depot/pkg/mirror"
)

// Task names for mirror maintenance.
const (
	TaskReplicateFile  = "mirror:replicate"
	TaskRemoveMirrored = "mirror:remove"
	TaskReconcile      = "mirror:reconcile"
)

// QueueMirror is the queue mirror traffic runs on, separate from the
// default queue so a slow bucket cannot starve other work.
const QueueMirror = "mirror"

// Mirror is the slice of the bucket mirror the tasks drive.
type Mirror interface {
	Replicate(ctx context.Context, relPath string) error
	Remove(ctx context.Context, relPath string) error
	Reconcile(ctx context.Context) (*mirror.ReconcileReport, error)
}

// ReplicatePayload identifies one file to copy to the bucket, by path
// relative to the storage root.
type ReplicatePayload struct {
	Path string `json:"path"`
}

// RemovePayload identifies one mirrored object to delete.
type RemovePayload struct {
	Path string `json:"path"`
}

// ReplicateFile copies one stored file to the bucket after an upload.
type ReplicateFile struct {
	mirror Mirror
}

// NewReplicateFile creates the replication task.
func NewReplicateFile(m Mirror) *ReplicateFile {
	return &ReplicateFile{mirror: m}
}

// Name implements the task contract.
func (t *ReplicateFile) Name() string { return TaskReplicateFile }

// Handle uploads the file to the bucket. A file that no longer exists
// locally is not an error: a delete won the race against replication and
// there is nothing left to copy.
func (t *ReplicateFile) Handle(ctx context.Context, p ReplicatePayload) error {
	err := t.mirror.Replicate(ctx, p.Path)
	if errors.Is(err, mirror.ErrNotFound) {
		return nil
	}
	return err
}

// RemoveMirrored deletes one bucket object after a local delete.
type RemoveMirrored struct {
	mirror Mirror
}

// NewRemoveMirrored creates the removal task.
func NewRemoveMirrored(m Mirror) *RemoveMirrored {
	return &RemoveMirrored{mirror: m}
}

// Name implements the task contract.
func (t *RemoveMirrored) Name() string { return TaskRemoveMirrored }

// Handle deletes the mirrored object. The mirror already treats a missing
// object as success, keeping the task idempotent across retries.
func (t *RemoveMirrored) Handle(ctx context.Context, p RemovePayload) error {
	return t.mirror.Remove(ctx, p.Path)
}

// ReconcileMirror periodically uploads whatever the event-driven path
// missed: files saved while the queue was down, failed replications past
// their retry budget, or anything written before the mirror was enabled.
type ReconcileMirror struct {
	mirror   Mirror
	schedule string
	log      *slog.Logger
}

// NewReconcileMirror creates the periodic reconcile task. The schedule is
// a 5-field cron expression. A nil logger discards the pass summary.
func NewReconcileMirror(m Mirror, schedule string, log *slog.Logger) *ReconcileMirror {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ReconcileMirror{mirror: m, schedule: schedule, log: log}
}

// Name implements the task contract.
func (t *ReconcileMirror) Name() string { return TaskReconcile }

// Schedule implements the scheduled task contract.
func (t *ReconcileMirror) Schedule() string { return t.schedule }

// Handle runs one reconcile pass. Per-file failures are counted in the
// report and retried on the next pass, so only a failure to scan at all
// fails the job.
func (t *ReconcileMirror) Handle(ctx context.Context) error {
	report, err := t.mirror.Reconcile(ctx)
	if err != nil {
		return err
	}
	t.log.InfoContext(ctx, "mirror reconcile finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("uploaded", report.Uploaded),
		slog.Int("failed", report.Failed),
	)
	return nil
}
