package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no origin header skips CORS", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		CORS()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")

		rec := httptest.NewRecorder()
		CORS()(okHandler).ServeHTTP(rec, req)

		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("configured origin is echoed", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")

		rec := httptest.NewRecorder()
		CORS(WithAllowOrigins("https://app.example.com"))(okHandler).ServeHTTP(rec, req)

		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin gets no CORS headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")

		rec := httptest.NewRecorder()
		CORS(WithAllowOrigins("https://app.example.com"))(okHandler).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")

		rec := httptest.NewRecorder()
		CORS(WithAllowCredentials())(okHandler).ServeHTTP(rec, req)

		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight answered directly", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/files", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		handlerCalled := false
		rec := httptest.NewRecorder()
		CORS()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			handlerCalled = true
		})).ServeHTTP(rec, req)

		require.False(t, handlerCalled)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), APIKeyHeader)
		require.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("expose headers set", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")

		rec := httptest.NewRecorder()
		CORS(WithExposeHeaders("X-Request-ID", "Content-Length"))(okHandler).ServeHTTP(rec, req)

		exposed := rec.Header().Get("Access-Control-Expose-Headers")
		require.True(t, strings.Contains(exposed, "X-Request-ID"))
	})

	t.Run("origin func overrides static list", func(t *testing.T) {
		t.Parallel()

		mw := CORS(
			WithAllowOrigins("https://static.example.com"),
			WithAllowOriginFunc(func(origin string) bool {
				return strings.HasSuffix(origin, ".trusted.example.com")
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://a.trusted.example.com")

		rec := httptest.NewRecorder()
		mw(okHandler).ServeHTTP(rec, req)
		require.Equal(t, "https://a.trusted.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://static.example.com")

		rec = httptest.NewRecorder()
		mw(okHandler).ServeHTTP(rec, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
