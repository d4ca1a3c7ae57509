package middlewares

import (
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	SkipPaths []string // Exact-match paths excluded from access logs
}

// LoggingOption configures LoggingConfig.
type LoggingOption func(*LoggingConfig)

// WithLoggingSkipPaths excludes exact paths from access logs. Useful for
// health probes that would otherwise dominate the log stream.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.SkipPaths = paths
	}
}

// Logging returns middleware that writes one structured access log line
// per request. The record goes through the request context so extractors
// attach the request ID and client identity.
func Logging(log *slog.Logger, opts ...LoggingOption) func(http.Handler) http.Handler {
	cfg := &LoggingConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(cfg.SkipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.InfoContext(r.Context(), "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", r.RemoteAddr),
			)
		})
	}
}

// statusRecorder captures the response status and size for access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
