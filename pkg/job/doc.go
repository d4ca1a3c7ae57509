// Package job provides background job processing using River, a
// Postgres-native queue. The service uses it to replicate stored files to
// the S3 mirror and to run periodic maintenance like mirror reconciliation
// and temp file sweeps.
//
// # Features
//
//   - Type-safe task registration with structural typing
//   - Scheduled tasks with cron expressions
//   - Transactional enqueueing (jobs visible only after commit)
//   - Named queues with configurable worker counts
//   - Retry with exponential backoff, deduplication, priorities
//   - Health check integration
//
// # Task Definition
//
// Tasks are structs with Name() and Handle() methods. No interface import
// is required; the package uses structural typing:
//
//	type ReplicateFile struct {
//	    mirror *mirror.Mirror
//	}
//
//	func (t *ReplicateFile) Name() string { return "mirror:replicate" }
//
//	func (t *ReplicateFile) Handle(ctx context.Context, p ReplicatePayload) error {
//	    return t.mirror.Replicate(ctx, p.RelPath)
//	}
//
// Scheduled tasks add a Schedule() method returning a 5-field cron
// expression:
//
//	func (t *ReconcileMirror) Name() string     { return "mirror:reconcile" }
//	func (t *ReconcileMirror) Schedule() string { return "0 3 * * *" }
//	func (t *ReconcileMirror) Handle(ctx context.Context) error { ... }
//
// # Usage
//
//	manager, err := job.NewManager(pool,
//	    job.WithTask(jobs.NewReplicateFile(m)),
//	    job.WithScheduledTask(jobs.NewReconcileMirror(m, "0 3 * * *", log)),
//	    job.WithQueue("mirror", 10),
//	    job.WithLogger(log),
//	)
//	if err != nil { ... }
//
//	if err := manager.Start(ctx); err != nil { ... }
//	defer manager.Stop(ctx)
//
//	err = manager.Enqueue(ctx, "mirror:replicate", ReplicatePayload{Path: rel},
//	    job.InQueue("mirror"),
//	    job.UniqueFor(time.Minute),
//	    job.UniqueKey(rel),
//	)
//
// Use [NewEnqueuer] for processes that only dispatch jobs and leave the
// processing to separate workers.
package job
