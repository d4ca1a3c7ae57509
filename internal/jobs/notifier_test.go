package jobs_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/depot/internal/jobs"
	"github.com/dmitrymomot/depot/pkg/job"
)

type enqueueCall struct {
	name    string
	payload any
	opts    int
}

// fakeEnqueuer records enqueue calls.
type fakeEnqueuer struct {
	mu    sync.Mutex
	calls []enqueueCall
	err   error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, name string, payload any, opts ...job.EnqueueOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, enqueueCall{name: name, payload: payload, opts: len(opts)})
	return f.err
}

func TestNotifier(t *testing.T) {
	t.Parallel()

	t.Run("queues replication on save", func(t *testing.T) {
		t.Parallel()

		fe := &fakeEnqueuer{}
		n := jobs.NewNotifier(fe, nil)

		n.FileSaved(context.Background(), "acme-corp/user-42/a.pdf")

		require.Len(t, fe.calls, 1)
		require.Equal(t, jobs.TaskReplicateFile, fe.calls[0].name)
		require.Equal(t, jobs.ReplicatePayload{Path: "acme-corp/user-42/a.pdf"}, fe.calls[0].payload)
	})

	t.Run("queues removal on delete", func(t *testing.T) {
		t.Parallel()

		fe := &fakeEnqueuer{}
		n := jobs.NewNotifier(fe, nil)

		n.FileDeleted(context.Background(), "acme-corp/a.pdf")

		require.Len(t, fe.calls, 1)
		require.Equal(t, jobs.TaskRemoveMirrored, fe.calls[0].name)
		require.Equal(t, jobs.RemovePayload{Path: "acme-corp/a.pdf"}, fe.calls[0].payload)
	})

	t.Run("swallows and logs enqueue failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))

		fe := &fakeEnqueuer{err: errors.New("queue unavailable")}
		n := jobs.NewNotifier(fe, log)

		// Must not panic or propagate; the file write already succeeded.
		n.FileSaved(context.Background(), "acme-corp/a.pdf")
		n.FileDeleted(context.Background(), "acme-corp/b.pdf")

		require.Contains(t, buf.String(), "failed to enqueue mirror replication")
		require.Contains(t, buf.String(), "failed to enqueue mirror removal")
	})
}
