package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates when absent", func(t *testing.T) {
		t.Parallel()

		var got string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = RequestIDFromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, got)
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("preserves upstream id", func(t *testing.T) {
		t.Parallel()

		var got string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-123")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "upstream-123", got)
		require.Equal(t, "upstream-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("first configured header wins", func(t *testing.T) {
		t.Parallel()

		var got string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		req.Header.Set("X-Request-ID", "req-1")

		h.ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, "req-1", got)
	})

	t.Run("custom generator and response header", func(t *testing.T) {
		t.Parallel()

		h := RequestID(
			WithRequestIDGenerator(func() string { return "fixed-id" }),
			WithRequestIDResponseHeader("X-Trace-ID"),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, "fixed-id", rec.Header().Get("X-Trace-ID"))
		require.Empty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("custom header list", func(t *testing.T) {
		t.Parallel()

		var got string
		h := RequestID(WithRequestIDHeaders("X-Custom-ID"))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = RequestIDFromContext(r.Context())
			}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "ignored")
		req.Header.Set("X-Custom-ID", "custom-7")

		h.ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, "custom-7", got)
	})
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	t.Parallel()

	require.Empty(t, RequestIDFromContext(context.Background()))
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	ex := RequestIDExtractor()

	_, ok := ex(context.Background())
	require.False(t, ok)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-123")
	attr, ok := ex(ctx)
	require.True(t, ok)
	require.Equal(t, "request_id", attr.Key)
	require.Equal(t, "req-123", attr.Value.String())
}
