package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/depot"
	"github.com/dmitrymomot/depot/middlewares"
)

// multipartOverhead is the headroom added on top of the upload size limit
// for multipart boundaries, part headers, and the owner form field.
const multipartOverhead = 1 << 20

// Storage is the slice of the depot engine the file handlers use.
type Storage interface {
	Save(ctx context.Context, clientID, originalName string, r io.Reader, opts ...depot.SaveOption) (*depot.File, error)
	List(ctx context.Context, clientID string) ([]depot.File, error)
	Path(ctx context.Context, clientID, reference string) (string, error)
	Info(ctx context.Context, clientID, reference string) (*depot.File, error)
	Delete(ctx context.Context, clientID, reference string) error
	Stats(ctx context.Context, clientID string) (*depot.Stats, error)
}

// Recorder counts file operations for metrics.
type Recorder interface {
	FileUploaded(bytes int64)
	FileDownloaded(bytes int64)
	FileDeleted()
}

// Mirrorer is notified after successful writes and deletes so the object
// mirror can follow the filesystem. Paths are relative to the storage root.
// Implementations must not block the request; replication runs elsewhere.
type Mirrorer interface {
	FileSaved(ctx context.Context, rootRelPath string)
	FileDeleted(ctx context.Context, rootRelPath string)
}

type noopRecorder struct{}

func (noopRecorder) FileUploaded(int64)   {}
func (noopRecorder) FileDownloaded(int64) {}
func (noopRecorder) FileDeleted()         {}

type noopMirror struct{}

func (noopMirror) FileSaved(context.Context, string)   {}
func (noopMirror) FileDeleted(context.Context, string) {}

// FilesHandler serves the authenticated file API. The client identity comes
// from the request context, so every route must sit behind
// middlewares.APIKeyAuth.
type FilesHandler struct {
	store   Storage
	metrics Recorder
	mirror  Mirrorer
	log     *slog.Logger
	maxSize int64
}

// FilesOption configures the handler.
type FilesOption func(*FilesHandler)

// WithMetrics wires operation counters. Without it uploads and downloads
// are simply not counted.
func WithMetrics(m Recorder) FilesOption {
	return func(h *FilesHandler) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithMirror wires mirror notifications for saved and deleted files.
func WithMirror(m Mirrorer) FilesOption {
	return func(h *FilesHandler) {
		if m != nil {
			h.mirror = m
		}
	}
}

// WithLogger sets the logger for internal errors.
func WithLogger(l *slog.Logger) FilesOption {
	return func(h *FilesHandler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithMaxUploadSize caps uploads at the given byte count. Zero means
// unlimited. The cap is enforced twice: the request body is cut off
// slightly above the limit, and the written file is validated against the
// exact limit before it is kept.
func WithMaxUploadSize(bytes int64) FilesOption {
	return func(h *FilesHandler) {
		h.maxSize = bytes
	}
}

// NewFilesHandler creates the file API handler around a storage engine.
func NewFilesHandler(store Storage, opts ...FilesOption) *FilesHandler {
	h := &FilesHandler{
		store:   store,
		metrics: noopRecorder{},
		mirror:  noopMirror{},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the handler's route tree, meant to be mounted under the
// authenticated API prefix.
func (h *FilesHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.upload)
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/info/*", h.info)
	r.Get("/download/*", h.download)
	r.Delete("/*", h.delete)
	return r
}

func (h *FilesHandler) upload(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	if clientID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing client identity")
		return
	}

	if h.maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusBadRequest, depot.ErrCodeFileTooLarge, "request body exceeds the upload limit")
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, "invalid_argument", "multipart field \"file\" is required")
		default:
			writeError(w, http.StatusBadRequest, "invalid_argument", "malformed multipart request")
		}
		return
	}
	defer file.Close()

	opts := []depot.SaveOption{depot.WithContentType(header.Header.Get("Content-Type"))}
	if owner := r.FormValue("owner"); owner != "" {
		opts = append(opts, depot.WithOwner(owner))
	}
	if h.maxSize > 0 {
		opts = append(opts, depot.WithValidation(depot.MaxSize(h.maxSize)))
	}

	rec, err := h.store.Save(r.Context(), clientID, header.Filename, file, opts...)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.metrics.FileUploaded(rec.SizeBytes)
	h.mirror.FileSaved(r.Context(), path.Join(clientID, rec.RelativePath))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *FilesHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	files, err := h.store.List(r.Context(), clientID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FilesHandler) stats(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	stats, err := h.store.Stats(r.Context(), clientID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FilesHandler) info(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	ref, err := wildcardParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid file reference")
		return
	}
	rec, err := h.store.Info(r.Context(), clientID, ref)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// download streams the file bytes with the original name as the attachment
// filename. Delivery goes through http.ServeFile, which handles range
// requests and conditional headers.
func (h *FilesHandler) download(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	ref, err := wildcardParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid file reference")
		return
	}

	rec, err := h.store.Info(r.Context(), clientID, ref)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	abs, err := h.store.Path(r.Context(), clientID, ref)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", rec.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.OriginalName))
	http.ServeFile(w, r, abs)
	h.metrics.FileDownloaded(rec.SizeBytes)
}

func (h *FilesHandler) delete(w http.ResponseWriter, r *http.Request) {
	clientID := middlewares.ClientIDFromContext(r.Context())
	ref, err := wildcardParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid file reference")
		return
	}

	// Resolve the record first; the mirror needs the relative path and the
	// engine forgets it once the file is gone.
	rec, err := h.store.Info(r.Context(), clientID, ref)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.store.Delete(r.Context(), clientID, ref); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	h.metrics.FileDeleted()
	h.mirror.FileDeleted(r.Context(), path.Join(clientID, rec.RelativePath))
	w.WriteHeader(http.StatusNoContent)
}

// wildcardParam returns the decoded tail of the matched route. chi keeps
// the escaped form when the raw URL contains percent escapes, so the value
// is unescaped before it is used as a file reference.
func wildcardParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "*"))
}
