package middlewares

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/depot/pkg/logger"
)

// APIKeyHeader is the header clients present their key in.
const APIKeyHeader = "X-API-Key"

// Authenticator resolves a plaintext API key to a client identity.
type Authenticator interface {
	Authenticate(ctx context.Context, plaintext string) (string, error)
}

// clientIDKey is the context key for the authenticated client identity.
type clientIDKey struct{}

// APIKeyAuth returns middleware that authenticates requests with the
// X-API-Key header. Requests without a valid key receive a 401 JSON
// envelope. On success the client identity is stored in the request
// context for handlers and log extractors; the response never reveals
// whether a key is unknown or revoked.
func APIKeyAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key")
				return
			}

			clientID, err := auth.Authenticate(r.Context(), key)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey{}, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIDFromContext extracts the authenticated client identity.
// Returns an empty string when the request did not pass APIKeyAuth.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey{}).(string); ok {
		return v
	}
	return ""
}

// ClientIDExtractor returns a context extractor that attaches the
// authenticated client identity to log records.
func ClientIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := ClientIDFromContext(ctx); v != "" {
			return slog.String("client_id", v), true
		}
		return slog.Attr{}, false
	}
}

// BearerAuth returns middleware that guards a route group with a static
// bearer token. An empty configured token disables the surface entirely
// and every request is rejected. Token comparison is constant time.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "admin access disabled")
				return
			}

			presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
