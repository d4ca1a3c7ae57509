package jobs

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/depot/pkg/job"
)

// mirrorMaxAttempts bounds retries for event-driven mirror jobs. Past the
// budget the periodic reconcile pass picks the file up instead.
const mirrorMaxAttempts = 5

// replicateDedupeWindow collapses repeated replication requests for the
// same path into one queued job.
const replicateDedupeWindow = time.Minute

// Enqueuer is the slice of the job manager the notifier uses.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// Notifier turns storage events into queued mirror jobs. It never fails
// the caller: the filesystem write already succeeded, so queue trouble is
// logged and left to the reconcile pass to heal.
type Notifier struct {
	enqueuer Enqueuer
	log      *slog.Logger
}

// NewNotifier creates a notifier on top of a job enqueuer. A nil logger
// discards enqueue failures.
func NewNotifier(e Enqueuer, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{enqueuer: e, log: log}
}

// FileSaved queues replication of a newly stored file.
func (n *Notifier) FileSaved(ctx context.Context, path string) {
	err := n.enqueuer.Enqueue(ctx, TaskReplicateFile, ReplicatePayload{Path: path},
		job.InQueue(QueueMirror),
		job.MaxAttempts(mirrorMaxAttempts),
		job.UniqueFor(replicateDedupeWindow),
		job.UniqueKey(path),
	)
	if err != nil {
		n.log.ErrorContext(ctx, "failed to enqueue mirror replication",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}

// FileDeleted queues removal of the mirrored object.
func (n *Notifier) FileDeleted(ctx context.Context, path string) {
	err := n.enqueuer.Enqueue(ctx, TaskRemoveMirrored, RemovePayload{Path: path},
		job.InQueue(QueueMirror),
		job.MaxAttempts(mirrorMaxAttempts),
	)
	if err != nil {
		n.log.ErrorContext(ctx, "failed to enqueue mirror removal",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}
