// Package jobs holds the background tasks that keep secondary state in
// step with the filesystem: bucket replication and removal driven by
// storage events, a periodic reconcile pass for whatever the events
// missed, and a sweeper for temp files orphaned by crashed uploads.
//
// The Notifier bridges the file handlers to the queue. Registration with
// the job manager:
//
//	manager, err := job.NewManager(pool,
//	    job.WithQueue(jobs.QueueMirror, 4),
//	    job.WithTask(jobs.NewReplicateFile(m)),
//	    job.WithTask(jobs.NewRemoveMirrored(m)),
//	    job.WithScheduledTask(jobs.NewReconcileMirror(m, cfg.ReconcileSchedule, log)),
//	    job.WithScheduledTask(jobs.NewSweepTemp(store.Root(), cfg.SweepMaxAge, cfg.SweepSchedule, log)),
//	)
package jobs
