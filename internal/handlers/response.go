package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/depot"
	"github.com/dmitrymomot/depot/pkg/apikey"
)

// ErrorResponse is the envelope for every error the API returns.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human-readable
// message. Details is populated for validation failures only.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON renders v with the given status. Encoding failures are not
// recoverable at this point (the status line is already written), so they
// are ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders an error envelope with a code and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// NotFound answers unmatched routes with the standard envelope, so API
// clients never see a text/plain 404. The public static surface keeps its
// own plain responses.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	}
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// respondError translates domain errors into HTTP responses. Messages are
// fixed strings rather than err.Error() so that wrapped causes, which may
// contain filesystem paths or SQL details, never reach clients. Anything
// unmapped is logged and reported as an opaque internal error.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ve *depot.FileValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
			Code:    ve.Code,
			Message: ve.Message,
			Details: ve.Details,
		}})
		return
	}

	switch {
	case errors.Is(err, depot.ErrInvalidPath), errors.Is(err, depot.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid file reference")
	case errors.Is(err, depot.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "file not found")
	case errors.Is(err, apikey.ErrKeyNotFound):
		writeError(w, http.StatusNotFound, "not_found", "key not found")
	case errors.Is(err, apikey.ErrClientRequired):
		writeError(w, http.StatusBadRequest, "invalid_argument", "client id is required")
	case errors.Is(err, apikey.ErrReadOnlyStore):
		writeError(w, http.StatusConflict, "read_only", "key store is read-only")
	default:
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
