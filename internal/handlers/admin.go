package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/depot"
	"github.com/dmitrymomot/depot/pkg/apikey"
)

// KeyService is the key lifecycle the admin API exposes.
type KeyService interface {
	Create(ctx context.Context, clientID, name string) (apikey.Key, string, error)
	List(ctx context.Context) ([]apikey.Key, error)
	Rotate(ctx context.Context, id uuid.UUID) (apikey.Key, string, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// AdminHandler serves API key management. Every route must sit behind
// middlewares.BearerAuth; the handler itself performs no authentication.
type AdminHandler struct {
	keys KeyService
	log  *slog.Logger
}

// NewAdminHandler creates the admin handler. A nil logger discards errors.
func NewAdminHandler(keys KeyService, log *slog.Logger) *AdminHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AdminHandler{keys: keys, log: log}
}

// Routes returns the admin route tree.
func (h *AdminHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/keys", h.create)
	r.Get("/keys", h.list)
	r.Post("/keys/{id}/rotate", h.rotate)
	r.Delete("/keys/{id}", h.revoke)
	return r
}

// keyResponse is a key record extended with the plaintext, returned only
// from create and rotate. The plaintext is not recoverable afterwards.
type keyResponse struct {
	apikey.Key
	PlaintextKey string `json:"key"`
}

func (h *AdminHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"clientId"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed JSON body")
		return
	}

	// Keys are only minted for identities the storage engine will accept,
	// otherwise the key would authenticate but every operation would fail.
	if err := depot.ValidateIdentity(req.ClientID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "client id is not a valid namespace")
		return
	}

	key, plaintext, err := h.keys.Create(r.Context(), req.ClientID, req.Name)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, keyResponse{Key: key, PlaintextKey: plaintext})
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if keys == nil {
		keys = []apikey.Key{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *AdminHandler) rotate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid key id")
		return
	}

	key, plaintext, err := h.keys.Rotate(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Key: key, PlaintextKey: plaintext})
}

func (h *AdminHandler) revoke(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid key id")
		return
	}

	if err := h.keys.Revoke(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
