// Package middlewares provides net/http middleware for the depot service.
//
// Every middleware follows the standard func(http.Handler) http.Handler
// shape and composes with chi routers. Configuration uses functional
// options with sensible defaults:
//
//	r := chi.NewRouter()
//	r.Use(
//		middlewares.RequestID(),
//		middlewares.Logging(log, middlewares.WithLoggingSkipPaths("/health/live")),
//		middlewares.Recover(log),
//		middlewares.Timeout(30*time.Second),
//	)
//
// Authentication gates apply per route group: APIKeyAuth guards the client
// file API with X-API-Key lookups, BearerAuth guards the admin key
// management surface with a static token. Rejections use the same JSON
// error envelope as handler errors.
//
// RequestIDExtractor and ClientIDExtractor plug into the logger package so
// every log record carries the request ID and authenticated client.
package middlewares
