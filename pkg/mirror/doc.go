// Package mirror replicates a local storage root to an S3-compatible
// bucket.
//
// The filesystem stays the source of truth: files land on disk first and
// background jobs call Replicate for each saved file and Remove for each
// delete. Reconcile walks the root periodically and re-uploads anything
// the bucket is missing, healing gaps left by crashes or a bucket that
// was offline. Objects are keyed by the file's path relative to the root,
// so the bucket layout matches the on-disk layout.
//
// # Usage
//
//	m, err := mirror.New(store.Root(), mirror.Config{
//		Bucket:    "depot-mirror",
//		Region:    "us-east-1",
//		AccessKey: os.Getenv("MIRROR_S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("MIRROR_S3_SECRET_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// After a save lands on disk:
//	err = m.Replicate(ctx, "acme-corp/2025-01-15T10-04-05.123Z_a1b2c3d4_report.pdf")
//
//	// Nightly:
//	report, err := m.Reconcile(ctx)
//
// MinIO and other S3-compatible services work through the Endpoint and
// PathStyle settings. With an empty bucket the mirror is disabled and the
// service runs filesystem-only; Config.Enabled reports which mode applies.
package mirror
