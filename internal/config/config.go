package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/depot"
	"github.com/dmitrymomot/depot/pkg/db"
	"github.com/dmitrymomot/depot/pkg/logger"
	"github.com/dmitrymomot/depot/pkg/mirror"
)

// Config aggregates the environment configuration of every subsystem.
// Each subsystem declares its own env-tagged struct; this type only
// composes them so the whole service is parsed in one call.
type Config struct {
	Server  Server
	Log     logger.Config
	Sentry  logger.SentryConfig
	Storage depot.Config
	DB      db.Config
	Redis   Redis
	Mirror  mirror.Config
	Auth    Auth
	Upload  Upload
	Jobs    Jobs
}

// Server configures the HTTP listener.
type Server struct {
	// Addr is the listen address.
	Addr string `env:"SERVER_ADDR" envDefault:":8080"`

	// RequestTimeout caps API request handling. Downloads and static
	// serving are exempt so large files can stream.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORSOrigins lists allowed browser origins. Defaults to all.
	CORSOrigins []string `env:"SERVER_CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Redis configures the cache connection.
type Redis struct {
	// URL is the Redis connection URL (redis:// or rediss://). Optional:
	// with an empty URL the API key cache falls back to process memory.
	URL string `env:"REDIS_URL"`
}

// Auth configures API key authentication and the admin surface.
type Auth struct {
	// AdminToken guards the /admin endpoints. Empty disables them.
	AdminToken string `env:"ADMIN_API_TOKEN"`

	// StaticKeysFile points to a YAML key file used instead of Postgres
	// when the database is not configured.
	StaticKeysFile string `env:"AUTH_STATIC_KEYS_FILE"`

	// CacheTTL bounds how long an authenticated key is served from cache
	// after rotation or revocation elsewhere.
	CacheTTL time.Duration `env:"AUTH_CACHE_TTL" envDefault:"5m"`
}

// Upload configures upload validation.
type Upload struct {
	// MaxSize is the per-file upload limit in bytes (default: 100MB).
	MaxSize int64 `env:"UPLOAD_MAX_SIZE" envDefault:"104857600"`
}

// Jobs configures background processing.
type Jobs struct {
	// MaxWorkers caps concurrent job execution.
	MaxWorkers int `env:"JOBS_MAX_WORKERS" envDefault:"10"`

	// ReconcileSchedule is the cron expression for the mirror reconcile
	// sweep.
	ReconcileSchedule string `env:"JOBS_RECONCILE_SCHEDULE" envDefault:"0 3 * * *"`

	// SweepSchedule is the cron expression for the stale temp file sweep.
	SweepSchedule string `env:"JOBS_SWEEP_SCHEDULE" envDefault:"*/30 * * * *"`

	// SweepMaxAge is how old a temp file must be before the sweep removes
	// it. Generous so slow in-flight uploads are never touched.
	SweepMaxAge time.Duration `env:"JOBS_SWEEP_MAX_AGE" envDefault:"24h"`
}

// Load parses the full service configuration from the environment.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
