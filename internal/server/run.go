package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// runConfig holds runtime configuration for the server.
type runConfig struct {
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

// RunOption configures the server runtime.
type RunOption func(*runConfig)

// Address sets the listen address. Defaults to ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// Logger sets the runtime logger. If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds graceful shutdown, covering both in-flight
// requests and shutdown hooks. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function to run before the listener opens, in
// registration order. A failing hook aborts startup; already-registered
// shutdown hooks still run so partially started subsystems are released.
//
// Example:
//
//	server.StartupHook(manager.StartFunc())
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function to run during shutdown, in
// registration order. Each hook receives a context with the shutdown
// timeout.
//
// Example:
//
//	server.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets a custom base context for signal handling. Useful for
// tests and for embedding into an existing context hierarchy. Defaults to
// context.Background().
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, a serve
// failure, or base context cancellation, then shuts down gracefully.
func Run(handler http.Handler, opts ...RunOption) error {
	cfg := &runConfig{
		address:         ":8080",
		shutdownTimeout: defaultShutdownTimeout,
		baseCtx:         context.Background(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := &http.Server{
		Addr:              cfg.address,
		Handler:           handler,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	ctx, cancel := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// shutdown drains the server (when it got as far as serving) and runs
	// all shutdown hooks, sharing one timeout budget.
	shutdown := func(stopServer bool) []error {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer shutdownCancel()

		var errs []error
		if stopServer {
			if err := server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		for _, hook := range cfg.shutdownHooks {
			if err := hook(shutdownCtx); err != nil {
				errs = append(errs, err)
				logger.Error("shutdown hook failed", slog.Any("error", err))
			}
		}
		return errs
	}

	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			errs := append([]error{fmt.Errorf("server: startup hook: %w", err)}, shutdown(false)...)
			return errors.Join(errs...)
		}
	}

	// Listen before serving so the caller gets bind errors synchronously.
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.Join(append([]error{err}, shutdown(false)...)...)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Join(append([]error{err}, shutdown(false)...)...)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	errs := shutdown(true)
	if len(errs) > 0 {
		logger.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	logger.Info("shutdown completed")
	return nil
}
