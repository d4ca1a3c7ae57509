// Package db provides the PostgreSQL layer for the depot service.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with retry-based connection
// establishment, a health check closure for readiness probes, goose-backed
// migrations over an embedded filesystem, and a transaction helper.
//
// Depot stores only API keys and the background job queue in Postgres; file
// metadata never touches the database (the storage tree is its own index).
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// # Transactions
//
// WithTx rolls back on error or panic and commits otherwise:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		// queries using tx
//		return nil
//	})
//
// # Health
//
//	health.Checks{"postgres": db.Healthcheck(pool)}
package db
