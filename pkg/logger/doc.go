// Package logger builds structured slog loggers for the depot service.
//
// It extends log/slog with context-based attribute injection and optional
// Sentry error reporting. Request-scoped values such as request IDs and
// client identities are pulled from the context on every log call, so
// handlers and background jobs log them without threading attributes through
// every call site.
//
// # Basic Usage
//
// Create a logger from environment-driven configuration:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor(), middlewares.ClientIDExtractor())
//
//	// client_id and request_id are injected from the request context.
//	log.InfoContext(ctx, "file stored", slog.String("stored_name", f.StoredName))
//
// # Sentry Integration
//
// NewWithSentry fans log records out to stdout and Sentry. Errors create
// Sentry issues; warnings are stored for context. With an empty DSN the
// logger degrades to stdout only, so the same code path works in
// development and production:
//
//	log := logger.NewWithSentry(cfg, sentryCfg, extractors...)
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute from a context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Returning false skips the attribute for that record. Extractors run on
// every log call so request-scoped values stay fresh.
package logger
