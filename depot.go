package depot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// TempFilePrefix marks in-flight uploads. The leading dot keeps List from
// picking up files that are still being written; sweepers can remove stale
// ones left behind by crashes.
const TempFilePrefix = ".depot-"

// tmpPattern is the os.CreateTemp pattern for in-flight uploads.
const tmpPattern = TempFilePrefix + "*"

// Config holds storage engine configuration.
type Config struct {
	// RootDir is the storage root directory (required). Created if absent.
	RootDir string `env:"STORAGE_ROOT_DIR,required"`

	// StaticPrefix is the URL path prefix under which stored files are
	// served (default: static).
	StaticPrefix string `env:"STORAGE_STATIC_PREFIX" envDefault:"static"`

	// PublicBaseURL is the scheme://host prefix for public URLs (optional).
	// If empty, public URLs are host-relative like download URLs.
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`

	// DirMode is the permission mode for created directories (default: 0755).
	DirMode os.FileMode `env:"STORAGE_DIR_MODE" envDefault:"0755"`

	// FileMode is the permission mode for stored files (default: 0644).
	FileMode os.FileMode `env:"STORAGE_FILE_MODE" envDefault:"0644"`
}

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.StaticPrefix == "" {
		c.StaticPrefix = "static"
	}
	if c.DirMode == 0 {
		c.DirMode = 0o755
	}
	if c.FileMode == 0 {
		c.FileMode = 0o644
	}
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.RootDir == "" {
		return ErrInvalidConfig
	}
	return nil
}

// File is the metadata record for one stored file. Every field is derived
// from the file's on-disk name, size, and location, so records rebuilt by
// List and Info match the one returned by Save.
type File struct {
	StoredName   string    `json:"storedName"`
	OriginalName string    `json:"originalName"`
	SizeBytes    int64     `json:"sizeBytes"`
	MIMEType     string    `json:"mimeType"`
	RelativePath string    `json:"relativePath"`
	UploadedAt   time.Time `json:"uploadedAt"`
	DownloadURL  string    `json:"downloadUrl"`
	PublicURL    string    `json:"publicUrl"`
}

// Storage is the filesystem-backed multi-tenant storage engine.
// It is stateless and safe for concurrent use; all state lives under the
// root directory.
type Storage struct {
	root          string
	staticPrefix  string
	publicBaseURL string
	dirMode       os.FileMode
	fileMode      os.FileMode
}

// New creates a storage engine rooted at cfg.RootDir, creating the root
// directory if it does not exist.
func New(cfg Config) (*Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(root, cfg.DirMode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Storage{
		root:          root,
		staticPrefix:  strings.Trim(cfg.StaticPrefix, "/"),
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		dirMode:       cfg.DirMode,
		fileMode:      cfg.FileMode,
	}, nil
}

// Root returns the absolute storage root directory.
func (s *Storage) Root() string {
	return s.root
}

// Healthcheck returns a readiness probe that verifies the storage root is
// present and writable. It creates and removes a probe file so a read-only
// mount is reported as unhealthy, not just a missing directory.
func (s *Storage) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		fi, err := os.Stat(s.root)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: root is not a directory", ErrStorageUnavailable)
		}

		tmp, err := os.CreateTemp(s.root, tmpPattern)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		name := tmp.Name()
		_ = tmp.Close()
		_ = os.Remove(name)

		return nil
	}
}

// Save writes the reader's bytes as a new file in the client namespace and
// returns its record. The bytes go to a temporary file in the target
// directory first and are renamed into place, so concurrent listers never
// see partial content. Validation rules run against the written byte count
// before the rename; a rejected file leaves nothing behind.
func (s *Storage) Save(ctx context.Context, clientID, originalName string, r io.Reader, opts ...SaveOption) (*File, error) {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateSegment(clientID); err != nil {
		return nil, err
	}
	name, err := sanitizeOriginalName(originalName)
	if err != nil {
		return nil, err
	}
	if o.owner != "" {
		if err := validateSegment(o.owner); err != nil {
			return nil, err
		}
	}

	dir := filepath.Join(s.root, clientID)
	if o.owner != "" {
		dir = filepath.Join(dir, o.owner)
	}
	if err := ensureWithin(s.root, dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	tmpName, size, err := writeTemp(dir, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	declared := o.contentType
	if declared == "" {
		declared = MIMEFromName(name)
	}
	if err := validateFile(size, declared, o.validationRules); err != nil {
		_ = os.Remove(tmpName)
		return nil, err
	}

	stored := newStoredName(name)
	dst := filepath.Join(dir, stored)
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	fi, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	rec := s.record(clientID, o.owner, stored, fi)
	return &rec, nil
}

// List enumerates every file in the client namespace: loose files first
// level, then one level of owner subdirectories. A namespace that does not
// exist yet is an empty listing, not an error. Entries that vanish between
// the directory read and the stat (a racing Delete) are skipped.
func (s *Storage) List(ctx context.Context, clientID string) ([]File, error) {
	if err := validateSegment(clientID); err != nil {
		return nil, err
	}

	clientRoot := filepath.Join(s.root, clientID)
	entries, err := os.ReadDir(clientRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return []File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			owner := e.Name()
			sub, err := os.ReadDir(filepath.Join(clientRoot, owner))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
			}
			for _, f := range sub {
				if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
					continue
				}
				fi, err := f.Info()
				if err != nil {
					continue
				}
				files = append(files, s.record(clientID, owner, f.Name(), fi))
			}
			continue
		}

		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, s.record(clientID, "", e.Name(), fi))
	}

	return files, nil
}

// Path resolves a reference to the file's absolute physical path. The path
// is suitable for direct serving (sendfile); it is never exposed in API
// responses.
func (s *Storage) Path(ctx context.Context, clientID, reference string) (string, error) {
	return s.resolve(clientID, reference)
}

// Info resolves a reference and rebuilds the file's record. The relative
// path is recomputed from the resolved location, so a file stored under an
// owner reports "owner/storedName" even when looked up by bare name.
func (s *Storage) Info(ctx context.Context, clientID, reference string) (*File, error) {
	abs, err := s.resolve(clientID, reference)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfoFailed, err)
	}

	clientRoot := filepath.Join(s.root, clientID)
	rel, err := filepath.Rel(clientRoot, abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfoFailed, err)
	}
	rel = filepath.ToSlash(rel)

	owner := ""
	if dir := path.Dir(rel); dir != "." {
		owner = dir
	}

	rec := s.record(clientID, owner, path.Base(rel), fi)
	return &rec, nil
}

// Delete resolves a reference and removes the file. A file that vanishes
// between resolution and removal reports ErrNotFound.
func (s *Storage) Delete(ctx context.Context, clientID, reference string) error {
	abs, err := s.resolve(clientID, reference)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// Stats aggregates the client namespace into usage statistics. The whole
// namespace is re-read on every call; an absent namespace yields zeroes.
func (s *Storage) Stats(ctx context.Context, clientID string) (*Stats, error) {
	files, err := s.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return newStats(files), nil
}

// record builds a File from a stored name and its stat result.
func (s *Storage) record(clientID, owner, storedName string, fi fs.FileInfo) File {
	rel := storedName
	if owner != "" {
		rel = owner + "/" + storedName
	}
	download := s.downloadURL(clientID, owner, storedName)
	return File{
		StoredName:   storedName,
		OriginalName: OriginalName(storedName),
		SizeBytes:    fi.Size(),
		MIMEType:     MIMEFromName(storedName),
		RelativePath: rel,
		UploadedAt:   fi.ModTime().UTC(),
		DownloadURL:  download,
		PublicURL:    s.publicURL(download),
	}
}

// downloadURL builds the host-relative URL under the static prefix:
// /<staticPrefix>/<clientID>/[<owner>/]<storedName>.
func (s *Storage) downloadURL(clientID, owner, storedName string) string {
	segments := make([]string, 0, 4)
	segments = append(segments, s.staticPrefix, url.PathEscape(clientID))
	if owner != "" {
		segments = append(segments, url.PathEscape(owner))
	}
	segments = append(segments, url.PathEscape(storedName))
	return "/" + strings.Join(segments, "/")
}

// publicURL prefixes a download URL with the configured public base URL.
func (s *Storage) publicURL(downloadURL string) string {
	if s.publicBaseURL == "" {
		return downloadURL
	}
	return s.publicBaseURL + downloadURL
}

// writeTemp spools the reader into a temporary file in dir and returns its
// name and byte count. The file is synced and closed; on any error the
// temporary file is removed.
func writeTemp(dir string, r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return "", 0, err
	}

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}

	return tmp.Name(), size, nil
}
