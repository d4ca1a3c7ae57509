package jobs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrymomot/depot"
)

// TaskSweepTemp is the task name for the temp file sweeper.
const TaskSweepTemp = "storage:sweep_temp"

// SweepTemp periodically removes temp files orphaned by crashed uploads.
// The engine writes uploads to dot-prefixed temp files and renames them
// into place; a process killed mid-upload leaves the temp file behind, and
// nothing else ever cleans it up.
type SweepTemp struct {
	root     string
	maxAge   time.Duration
	schedule string
	log      *slog.Logger
}

// NewSweepTemp creates the sweeper for the given storage root. Temp files
// younger than maxAge are left alone since an upload may still be writing
// them.
func NewSweepTemp(root string, maxAge time.Duration, schedule string, log *slog.Logger) *SweepTemp {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SweepTemp{root: root, maxAge: maxAge, schedule: schedule, log: log}
}

// Name implements the task contract.
func (t *SweepTemp) Name() string { return TaskSweepTemp }

// Schedule implements the scheduled task contract.
func (t *SweepTemp) Schedule() string { return t.schedule }

// Handle walks the storage root and removes stale temp files.
func (t *SweepTemp) Handle(ctx context.Context) error {
	cutoff := time.Now().Add(-t.maxAge)
	removed := 0

	err := filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), depot.TempFilePrefix) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			// Entry vanished mid-walk; nothing to sweep.
			return nil
		}
		if fi.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			t.log.WarnContext(ctx, "failed to remove stale temp file",
				slog.String("path", path),
				slog.Any("error", err),
			)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return fmt.Errorf("jobs: sweep temp files: %w", err)
	}

	if removed > 0 {
		t.log.InfoContext(ctx, "removed stale temp files", slog.Int("count", removed))
	}
	return nil
}
