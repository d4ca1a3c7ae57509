package server

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/depot"
	"github.com/dmitrymomot/depot/internal/config"
	"github.com/dmitrymomot/depot/internal/handlers"
	"github.com/dmitrymomot/depot/internal/metrics"
	"github.com/dmitrymomot/depot/middlewares"
	"github.com/dmitrymomot/depot/pkg/health"
)

// Hardcoded server limits. There are deliberately no global read or write
// timeouts: uploads and downloads legitimately run for minutes on slow
// links. Slow-loris protection comes from ReadHeaderTimeout, and bounded
// API work runs behind the timeout middleware.
const (
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Deps carries the wired subsystems the router composes. Metrics and
// Mirror may be nil; the affected features are simply absent.
type Deps struct {
	Log     *slog.Logger
	Store   *depot.Storage
	Auth    middlewares.Authenticator
	Keys    handlers.KeyService
	Metrics *metrics.Metrics
	Mirror  handlers.Mirrorer
	Checks  health.Checks
}

// Router assembles the full route tree: the authenticated file API, the
// admin key API, the public static surface, and the operational endpoints.
func Router(cfg config.Config, d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Logging(log, middlewares.WithLoggingSkipPaths(
		"/health/live", "/health/ready", "/metrics",
	)))
	r.Use(middlewares.Recover(log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middlewares.CORS(middlewares.WithAllowOrigins(cfg.Server.CORSOrigins...)))

	// Set before any Mount so chi propagates them into the subrouters.
	r.NotFound(handlers.NotFound())
	r.MethodNotAllowed(handlers.MethodNotAllowed())

	fileOpts := []handlers.FilesOption{
		handlers.WithLogger(log),
		handlers.WithMaxUploadSize(cfg.Upload.MaxSize),
	}
	if d.Metrics != nil {
		fileOpts = append(fileOpts, handlers.WithMetrics(d.Metrics))
	}
	if d.Mirror != nil {
		fileOpts = append(fileOpts, handlers.WithMirror(d.Mirror))
	}
	files := handlers.NewFilesHandler(d.Store, fileOpts...)

	r.Route("/api/files", func(api chi.Router) {
		api.Use(middlewares.APIKeyAuth(d.Auth))
		api.Use(middlewares.Timeout(cfg.Server.RequestTimeout))
		api.Mount("/", files.Routes())
	})

	admin := handlers.NewAdminHandler(d.Keys, log)
	r.Route("/admin", func(adm chi.Router) {
		adm.Use(middlewares.BearerAuth(cfg.Auth.AdminToken))
		adm.Use(middlewares.Timeout(cfg.Server.RequestTimeout))
		adm.Mount("/", admin.Routes())
	})

	staticPrefix := strings.Trim(cfg.Storage.StaticPrefix, "/")
	if staticPrefix == "" {
		staticPrefix = "static"
	}
	r.Get("/"+staticPrefix+"/*", handlers.StaticHandler(d.Store.Root()))

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(d.Checks, health.WithLogger(log)))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	return r
}
