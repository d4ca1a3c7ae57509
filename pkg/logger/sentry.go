package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels to send to Sentry
	// (e.g., slog.LevelWarn for warnings and errors).
	MinLevel slog.Level
}

// NewWithSentry creates a logger that sends records to both stdout and
// Sentry. If the DSN is empty, only stdout logging is enabled (graceful
// fallback for local development). Context extractors apply to both
// destinations.
func NewWithSentry(cfg Config, sentryCfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdoutHandler := cfg.handler()

	if sentryCfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sentryCfg.DSN,
		Environment: sentryCfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		// Graceful degradation: log to stdout if Sentry init fails.
		slog.New(stdoutHandler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(stdoutHandler, extractors...))
	}

	// Errors create Issues in Sentry; lower levels are stored as logs for
	// context and search.
	eventLevel := []slog.Level{slog.LevelError}
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if sentryCfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: eventLevel,
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	combined := newMultiHandler(stdoutHandler, sentryHandler)
	return slog.New(NewLogHandlerDecorator(combined, extractors...))
}
