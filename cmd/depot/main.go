package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/depot"
	"github.com/dmitrymomot/depot/internal/config"
	"github.com/dmitrymomot/depot/internal/handlers"
	"github.com/dmitrymomot/depot/internal/jobs"
	"github.com/dmitrymomot/depot/internal/metrics"
	"github.com/dmitrymomot/depot/internal/server"
	"github.com/dmitrymomot/depot/middlewares"
	"github.com/dmitrymomot/depot/migrations"
	"github.com/dmitrymomot/depot/pkg/apikey"
	"github.com/dmitrymomot/depot/pkg/cache"
	"github.com/dmitrymomot/depot/pkg/db"
	"github.com/dmitrymomot/depot/pkg/health"
	"github.com/dmitrymomot/depot/pkg/job"
	"github.com/dmitrymomot/depot/pkg/logger"
	"github.com/dmitrymomot/depot/pkg/mirror"
	"github.com/dmitrymomot/depot/pkg/redis"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("service failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithSentry(cfg.Log, cfg.Sentry,
		middlewares.RequestIDExtractor(),
		middlewares.ClientIDExtractor(),
	)

	store, err := depot.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	checks := health.Checks{"storage": store.Healthcheck()}
	runOpts := []server.RunOption{
		server.Address(cfg.Server.Addr),
		server.Logger(log),
		server.ShutdownTimeout(cfg.Server.ShutdownTimeout),
	}

	// Key records live in Postgres when a database is configured, in a
	// YAML file otherwise. The file variant is read-only: keys are
	// managed by editing the file, not through the admin API.
	var pool *pgxpool.Pool
	var keyStore apikey.Store
	switch {
	case cfg.DB.ConnectionString != "":
		pool, err = db.Connect(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		runOpts = append(runOpts, server.ShutdownHook(db.Shutdown(pool)))

		if err := db.Migrate(ctx, pool, migrations.Files, cfg.DB.MigrationsTable, log); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		keyStore = apikey.NewPostgresStore(pool)
		checks["postgres"] = db.Healthcheck(pool)
	case cfg.Auth.StaticKeysFile != "":
		keyStore, err = apikey.NewStaticStore(cfg.Auth.StaticKeysFile)
		if err != nil {
			return fmt.Errorf("load static keys: %w", err)
		}
	default:
		return errors.New("no key backend configured: set DATABASE_CONN_URL or AUTH_STATIC_KEYS_FILE")
	}

	// Authenticated keys are cached in Redis so rotation is visible
	// across replicas; a single instance can run on process memory.
	var keyCache cache.Cache[string]
	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		runOpts = append(runOpts, server.ShutdownHook(redis.Shutdown(client)))
		checks["redis"] = redis.Healthcheck(client)
		keyCache = cache.NewRedis[string](client, nil, cache.WithPrefix("apikeys"))
	} else {
		mem := cache.NewMemory[string]()
		runOpts = append(runOpts, server.ShutdownHook(func(context.Context) error {
			return mem.Close()
		}))
		keyCache = mem
	}

	keys := apikey.NewService(keyStore,
		apikey.WithCache(keyCache),
		apikey.WithCacheTTL(cfg.Auth.CacheTTL),
		apikey.WithLogger(log),
	)

	// The job queue needs Postgres. Without it uploads still work, but
	// mirroring and the temp sweep are off.
	var mirrorer handlers.Mirrorer
	if pool != nil {
		jobOpts := []job.Option{
			job.WithLogger(log),
			job.WithMaxWorkers(cfg.Jobs.MaxWorkers),
			job.WithScheduledTask(jobs.NewSweepTemp(store.Root(), cfg.Jobs.SweepMaxAge, cfg.Jobs.SweepSchedule, log)),
		}

		if cfg.Mirror.Enabled() {
			m, err := mirror.New(store.Root(), cfg.Mirror, mirror.WithLogger(log))
			if err != nil {
				return fmt.Errorf("open mirror: %w", err)
			}
			checks["mirror"] = m.Healthcheck()
			jobOpts = append(jobOpts,
				job.WithQueue(jobs.QueueMirror, 4),
				job.WithTask(jobs.NewReplicateFile(m)),
				job.WithTask(jobs.NewRemoveMirrored(m)),
				job.WithScheduledTask(jobs.NewReconcileMirror(m, cfg.Jobs.ReconcileSchedule, log)),
			)
		}

		manager, err := job.NewManager(pool, jobOpts...)
		if err != nil {
			return fmt.Errorf("create job manager: %w", err)
		}
		runOpts = append(runOpts,
			server.StartupHook(manager.StartFunc()),
			server.ShutdownHook(manager.Shutdown()),
		)

		if cfg.Mirror.Enabled() {
			mirrorer = jobs.NewNotifier(manager, log)
		}
	} else if cfg.Mirror.Enabled() {
		log.Warn("mirror is configured but needs a database for the job queue; mirroring disabled")
	}

	router := server.Router(cfg, server.Deps{
		Log:     log,
		Store:   store,
		Auth:    keys,
		Keys:    keys,
		Metrics: metrics.New(),
		Mirror:  mirrorer,
		Checks:  checks,
	})

	return server.Run(router, runOpts...)
}
