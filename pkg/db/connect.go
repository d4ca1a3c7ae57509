package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect establishes a PostgreSQL connection pool with retry logic.
// Exponential backoff handles transient network issues without overwhelming
// the database when multiple services restart simultaneously.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MinConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	// Attempt 1 waits RetryInterval, attempt 2 waits 2x, and so on.
	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
				return nil, errors.Join(ErrOpenConnection, waitErr)
			}
			continue
		}

		// Ping to catch authentication and permission issues, not just
		// socket reachability.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
				return nil, errors.Join(ErrOpenConnection, waitErr)
			}
			continue
		}

		return pool, nil
	}

	return nil, ErrOpenConnection
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
