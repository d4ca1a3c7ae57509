package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/depot/internal/handlers"
	"github.com/dmitrymomot/depot/middlewares"
	"github.com/dmitrymomot/depot/pkg/apikey"
)

const adminToken = "admt_5f2c9d0e"

// keysStub implements handlers.KeyService with function fields.
type keysStub struct {
	create func(ctx context.Context, clientID, name string) (apikey.Key, string, error)
	list   func(ctx context.Context) ([]apikey.Key, error)
	rotate func(ctx context.Context, id uuid.UUID) (apikey.Key, string, error)
	revoke func(ctx context.Context, id uuid.UUID) error
}

func (s *keysStub) Create(ctx context.Context, clientID, name string) (apikey.Key, string, error) {
	return s.create(ctx, clientID, name)
}

func (s *keysStub) List(ctx context.Context) ([]apikey.Key, error) {
	return s.list(ctx)
}

func (s *keysStub) Rotate(ctx context.Context, id uuid.UUID) (apikey.Key, string, error) {
	return s.rotate(ctx, id)
}

func (s *keysStub) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.revoke(ctx, id)
}

func newAdminEnv(t *testing.T, keys handlers.KeyService) http.Handler {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middlewares.BearerAuth(adminToken))
		admin.Mount("/", handlers.NewAdminHandler(keys, nil).Routes())
	})
	return r
}

func adminRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdminHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("mints a key and returns the plaintext once", func(t *testing.T) {
		t.Parallel()

		want := apikey.Key{
			ID:        uuid.New(),
			ClientID:  "acme-corp",
			Name:      "backend",
			Active:    true,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
		h := newAdminEnv(t, &keysStub{
			create: func(_ context.Context, clientID, name string) (apikey.Key, string, error) {
				require.Equal(t, "acme-corp", clientID)
				require.Equal(t, "backend", name)
				return want, "dk_plaintext", nil
			},
		})

		rec := adminRequest(t, h, http.MethodPost, "/admin/keys", `{"clientId":"acme-corp","name":"backend"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var got struct {
			apikey.Key
			PlaintextKey string `json:"key"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Equal(t, want.ID, got.ID)
		require.Equal(t, "acme-corp", got.ClientID)
		require.Equal(t, "dk_plaintext", got.PlaintextKey)
	})

	t.Run("rejects client ids the engine cannot use", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{})
		for _, clientID := range []string{"", "a/b", "..", `a\b`} {
			rec := adminRequest(t, h, http.MethodPost, "/admin/keys", `{"clientId":`+strconv.Quote(clientID)+`,"name":"x"}`)
			require.Equal(t, http.StatusBadRequest, rec.Code, "clientId %q", clientID)
			require.Equal(t, "invalid_argument", decodeError(t, rec).Error.Code)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{})
		rec := adminRequest(t, h, http.MethodPost, "/admin/keys", `{"clientId":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps read-only store to conflict", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{
			create: func(context.Context, string, string) (apikey.Key, string, error) {
				return apikey.Key{}, "", apikey.ErrReadOnlyStore
			},
		})

		rec := adminRequest(t, h, http.MethodPost, "/admin/keys", `{"clientId":"acme-corp","name":"x"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "read_only", decodeError(t, rec).Error.Code)
	})
}

func TestAdminHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("returns all records", func(t *testing.T) {
		t.Parallel()

		keys := []apikey.Key{
			{ID: uuid.New(), ClientID: "acme-corp", Name: "backend", Active: true},
			{ID: uuid.New(), ClientID: "globex", Name: "ci", Active: false},
		}
		h := newAdminEnv(t, &keysStub{
			list: func(context.Context) ([]apikey.Key, error) { return keys, nil },
		})

		rec := adminRequest(t, h, http.MethodGet, "/admin/keys", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []apikey.Key
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got, 2)
		require.Equal(t, keys[0].ID, got[0].ID)
	})

	t.Run("returns empty array when no keys exist", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{
			list: func(context.Context) ([]apikey.Key, error) { return nil, nil },
		})

		rec := adminRequest(t, h, http.MethodGet, "/admin/keys", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("hides store faults behind an opaque error", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{
			list: func(context.Context) ([]apikey.Key, error) {
				return nil, fmt.Errorf("%w: dial tcp 10.0.0.3:5432: connection refused", apikey.ErrStoreFailed)
			},
		})

		rec := adminRequest(t, h, http.MethodGet, "/admin/keys", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeError(t, rec)
		require.Equal(t, "internal_error", body.Error.Code)
		require.NotContains(t, rec.Body.String(), "10.0.0.3")
	})
}

func TestAdminHandler_Rotate(t *testing.T) {
	t.Parallel()

	t.Run("returns the replacement with its plaintext", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		h := newAdminEnv(t, &keysStub{
			rotate: func(_ context.Context, got uuid.UUID) (apikey.Key, string, error) {
				require.Equal(t, id, got)
				return apikey.Key{ID: uuid.New(), ClientID: "acme-corp", Active: true}, "dk_rotated", nil
			},
		})

		rec := adminRequest(t, h, http.MethodPost, "/admin/keys/"+id.String()+"/rotate", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			PlaintextKey string `json:"key"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Equal(t, "dk_rotated", got.PlaintextKey)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{})
		rec := adminRequest(t, h, http.MethodPost, "/admin/keys/not-a-uuid/rotate", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 404 for unknown or revoked keys", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{
			rotate: func(context.Context, uuid.UUID) (apikey.Key, string, error) {
				return apikey.Key{}, "", apikey.ErrKeyNotFound
			},
		})

		rec := adminRequest(t, h, http.MethodPost, "/admin/keys/"+uuid.NewString()+"/rotate", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not_found", decodeError(t, rec).Error.Code)
	})
}

func TestAdminHandler_Revoke(t *testing.T) {
	t.Parallel()

	t.Run("revokes the key", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		h := newAdminEnv(t, &keysStub{
			revoke: func(_ context.Context, got uuid.UUID) error {
				require.Equal(t, id, got)
				return nil
			},
		})

		rec := adminRequest(t, h, http.MethodDelete, "/admin/keys/"+id.String(), "")
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("returns 404 for unknown keys", func(t *testing.T) {
		t.Parallel()

		h := newAdminEnv(t, &keysStub{
			revoke: func(context.Context, uuid.UUID) error { return apikey.ErrKeyNotFound },
		})

		rec := adminRequest(t, h, http.MethodDelete, "/admin/keys/"+uuid.NewString(), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminHandler_RequiresBearer(t *testing.T) {
	t.Parallel()

	h := newAdminEnv(t, &keysStub{
		list: func(context.Context) ([]apikey.Key, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
