package server_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/depot/internal/server"
)

func TestRun(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("stops cleanly on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})

		done := make(chan error, 1)
		go func() {
			done <- server.Run(handler,
				server.Address("127.0.0.1:0"),
				server.WithContext(ctx),
				server.StartupHook(func(context.Context) error {
					close(started)
					return nil
				}),
			)
		}()

		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("server never started")
		}
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server never shut down")
		}
	})

	t.Run("runs hooks in registration order", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var order []string
		mark := func(name string) func(context.Context) error {
			return func(context.Context) error {
				order = append(order, name)
				if name == "start two" {
					cancel()
				}
				return nil
			}
		}

		done := make(chan error, 1)
		go func() {
			done <- server.Run(handler,
				server.Address("127.0.0.1:0"),
				server.WithContext(ctx),
				server.StartupHook(mark("start one")),
				server.StartupHook(mark("start two")),
				server.ShutdownHook(mark("stop one")),
				server.ShutdownHook(mark("stop two")),
			)
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server never shut down")
		}
		require.Equal(t, []string{"start one", "start two", "stop one", "stop two"}, order)
	})

	t.Run("failing startup hook aborts but still releases", func(t *testing.T) {
		t.Parallel()

		var cleaned bool
		var secondRan bool
		err := server.Run(handler,
			server.Address("127.0.0.1:0"),
			server.StartupHook(func(context.Context) error {
				return errors.New("pool exhausted")
			}),
			server.StartupHook(func(context.Context) error {
				secondRan = true
				return nil
			}),
			server.ShutdownHook(func(context.Context) error {
				cleaned = true
				return nil
			}),
		)

		require.ErrorContains(t, err, "startup hook")
		require.ErrorContains(t, err, "pool exhausted")
		require.False(t, secondRan)
		require.True(t, cleaned)
	})

	t.Run("reports bind failures", func(t *testing.T) {
		t.Parallel()

		// Occupy a port so the server cannot bind to it.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		var cleaned bool
		err = server.Run(handler,
			server.Address(ln.Addr().String()),
			server.ShutdownHook(func(context.Context) error {
				cleaned = true
				return nil
			}),
		)

		require.Error(t, err)
		require.True(t, cleaned)
	})

	t.Run("surfaces shutdown hook failures", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- server.Run(handler,
				server.Address("127.0.0.1:0"),
				server.WithContext(ctx),
				server.StartupHook(func(context.Context) error {
					cancel()
					return nil
				}),
				server.ShutdownHook(func(context.Context) error {
					return errors.New("flush failed")
				}),
			)
		}()

		select {
		case err := <-done:
			require.ErrorContains(t, err, "flush failed")
		case <-time.After(5 * time.Second):
			t.Fatal("server never shut down")
		}
	})
}
