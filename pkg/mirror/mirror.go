package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3-compatible mirror configuration.
type Config struct {
	// Bucket is the destination bucket. An empty bucket disables the
	// mirror entirely and the service runs filesystem-only.
	Bucket string `env:"MIRROR_S3_BUCKET"`

	// AccessKey is the access key ID for the bucket.
	AccessKey string `env:"MIRROR_S3_ACCESS_KEY"`

	// SecretKey is the secret access key for the bucket.
	SecretKey string `env:"MIRROR_S3_SECRET_KEY"`

	// Endpoint is a custom S3 endpoint URL (optional, for MinIO or other
	// S3-compatible services).
	Endpoint string `env:"MIRROR_S3_ENDPOINT"`

	// Region is the bucket region (default: us-east-1).
	Region string `env:"MIRROR_S3_REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style addressing (required for MinIO).
	PathStyle bool `env:"MIRROR_S3_PATH_STYLE" envDefault:"false"`

	// KeyPrefix is prepended to every object key (optional). Useful when
	// several environments share one bucket.
	KeyPrefix string `env:"MIRROR_S3_KEY_PREFIX"`
}

// Enabled reports whether a mirror bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

// validate checks that required configuration fields are set.
func (c Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("%w: credentials are required", ErrInvalidConfig)
	}
	return nil
}

// Mirror replicates files from a local storage root to an S3 bucket.
// Objects are keyed by the file's slash-separated path relative to the
// root, optionally under a configured key prefix, so the bucket layout
// matches the on-disk layout.
type Mirror struct {
	client *s3.Client
	root   string
	cfg    Config
	log    *slog.Logger
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithLogger sets the logger for replication events. Defaults to a
// no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mirror) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates a Mirror for the given local storage root.
func New(root string, cfg Config, opts ...Option) (*Mirror, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if root == "" {
		return nil, fmt.Errorf("%w: storage root is required", ErrInvalidConfig)
	}

	s3opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	m := &Mirror{
		client: s3.New(s3.Options{}, s3opts...),
		root:   root,
		cfg:    cfg,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Replicate uploads the local file at relPath (slash-separated, relative
// to the storage root) to the bucket. The upload streams from disk; a file
// that disappeared before the upload reports ErrNotFound so callers can
// treat a delete racing a replication as already settled.
func (m *Mirror) Replicate(ctx context.Context, relPath string) error {
	local, err := m.localPath(relPath)
	if err != nil {
		return err
	}

	f, err := os.Open(local)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, relPath)
		}
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	key := m.objectKey(relPath)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String(contentType(relPath)),
	}

	if _, err := m.client.PutObject(ctx, input); err != nil {
		return wrapS3Error(err, ErrUploadFailed)
	}

	m.log.DebugContext(ctx, "file replicated",
		slog.String("key", key),
		slog.Int64("size", fi.Size()))

	return nil
}

// Remove deletes the mirrored object for relPath. A missing object is not
// an error so deletes stay idempotent.
func (m *Mirror) Remove(ctx context.Context, relPath string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(m.objectKey(relPath)),
	}

	if _, err := m.client.DeleteObject(ctx, input); err != nil {
		wrapped := wrapS3Error(err, ErrDeleteFailed)
		if errors.Is(wrapped, ErrNotFound) {
			return nil
		}
		return wrapped
	}

	return nil
}

// ReconcileReport summarizes one reconcile pass.
type ReconcileReport struct {
	// Scanned is the number of local files examined.
	Scanned int

	// Uploaded is the number of files pushed because the bucket was
	// missing them or held a different size.
	Uploaded int

	// Failed is the number of uploads that failed. Failures are logged
	// and the pass continues; the next pass retries them.
	Failed int
}

// Reconcile walks the storage root and re-uploads every file the bucket
// is missing or holds at a different size. It heals gaps left by crashed
// replication jobs or a bucket that was offline. The filesystem is the
// source of truth: objects without a local counterpart are left alone,
// since a delete already removes its object directly.
func (m *Mirror) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	remote, err := m.remoteSizes(ctx)
	if err != nil {
		return nil, err
	}

	local, err := localFiles(m.root)
	if err != nil {
		return nil, fmt.Errorf("mirror: scan root: %w", err)
	}

	report := &ReconcileReport{Scanned: len(local)}
	for rel, size := range local {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if remoteSize, ok := remote[m.objectKey(rel)]; ok && remoteSize == size {
			continue
		}
		if err := m.Replicate(ctx, rel); err != nil {
			report.Failed++
			m.log.ErrorContext(ctx, "reconcile upload failed",
				slog.String("path", rel),
				slog.Any("error", err))
			continue
		}
		report.Uploaded++
	}

	return report, nil
}

// Healthcheck returns a readiness probe that verifies the bucket is
// reachable with the configured credentials.
func (m *Mirror) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		input := &s3.HeadBucketInput{Bucket: aws.String(m.cfg.Bucket)}
		if _, err := m.client.HeadBucket(ctx, input); err != nil {
			return wrapS3Error(err, ErrBucketUnavailable)
		}
		return nil
	}
}

// remoteSizes lists every object under the configured prefix and returns
// key -> size.
func (m *Mirror) remoteSizes(ctx context.Context) (map[string]int64, error) {
	sizes := make(map[string]int64)

	input := &s3.ListObjectsV2Input{Bucket: aws.String(m.cfg.Bucket)}
	if m.cfg.KeyPrefix != "" {
		input.Prefix = aws.String(strings.TrimSuffix(m.cfg.KeyPrefix, "/") + "/")
	}

	for {
		out, err := m.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, wrapS3Error(err, ErrListFailed)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil {
				continue
			}
			sizes[*obj.Key] = aws.ToInt64(obj.Size)
		}
		if !aws.ToBool(out.IsTruncated) {
			return sizes, nil
		}
		input.ContinuationToken = out.NextContinuationToken
	}
}

// objectKey maps a root-relative file path to its bucket key.
func (m *Mirror) objectKey(relPath string) string {
	if m.cfg.KeyPrefix == "" {
		return relPath
	}
	return strings.TrimSuffix(m.cfg.KeyPrefix, "/") + "/" + relPath
}

// localPath resolves relPath against the storage root, rejecting anything
// that would escape it.
func (m *Mirror) localPath(relPath string) (string, error) {
	rel := path.Clean(relPath)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	return filepath.Join(m.root, filepath.FromSlash(rel)), nil
}

// localFiles walks root and returns the slash-separated relative path and
// size of every stored file. Dotfiles are skipped: in-flight uploads land
// as dot-prefixed temp files next to their destination.
func localFiles(root string) (map[string]int64, error) {
	files := make(map[string]int64)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// contentType guesses a MIME type from the file extension, defaulting to
// application/octet-stream.
func contentType(relPath string) string {
	if ct := mime.TypeByExtension(path.Ext(relPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
