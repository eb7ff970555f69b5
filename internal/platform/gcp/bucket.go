package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// Bucket names a logical bucket; StorageConfig maps it to a real one.
type Bucket string

const (
	BucketMedia   Bucket = "media"
	BucketReports Bucket = "reports"
	BucketSecrets Bucket = "secrets"
)

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

// BlobStore is the object storage the dashboard depends on. Missing objects
// are reported as ads.ErrNotFound.
type BlobStore interface {
	Upload(ctx context.Context, bucket Bucket, key string, r io.Reader) error
	Download(ctx context.Context, bucket Bucket, key string) (io.ReadCloser, error)
	Attrs(ctx context.Context, bucket Bucket, key string) (*ObjectAttrs, error)
	PublicURL(bucket Bucket, key string) string
	Close() error
}

// NewBlobStore builds the backend selected by cfg.Mode.
func NewBlobStore(ctx context.Context, log *logger.Logger, cfg StorageConfig) (BlobStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BlobStore")
	serviceLog.Info("Object storage initialized",
		"mode", cfg.Mode,
		"mode_inferred", cfg.ModeInferred,
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.publicBase(),
		"media_bucket", cfg.MediaBucket,
		"report_bucket", cfg.ReportBucket,
	)
	if cfg.Mode == ObjectStorageModeMemory {
		return NewMemoryStore(cfg), nil
	}

	var opts []option.ClientOption
	if cfg.Mode == ObjectStorageModeGCSEmulator {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &gcsStore{log: serviceLog, client: client, cfg: cfg, http: http.DefaultClient}, nil
}

type gcsStore struct {
	log    *logger.Logger
	client *storage.Client
	cfg    StorageConfig
	http   *http.Client
}

func (cfg StorageConfig) bucketName(b Bucket) (string, error) {
	var name string
	switch b {
	case BucketMedia:
		name = cfg.MediaBucket
	case BucketReports:
		name = cfg.ReportBucket
	case BucketSecrets:
		name = cfg.SecretsBucket
	default:
		return "", fmt.Errorf("unknown bucket %q", b)
	}
	if name == "" {
		return "", ads.NewError(ads.CodeConfig, "gcp.bucket", fmt.Sprintf("no bucket configured for %s", b), ads.ErrMissingConfig)
	}
	return name, nil
}

// PublicURL is where a stored object can be fetched. Media URLs are also the
// managed-storage prefix the upsert guard checks sources against.
func (cfg StorageConfig) PublicURL(b Bucket, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	name, err := cfg.bucketName(b)
	if err != nil {
		return key
	}
	if b == BucketMedia && cfg.MediaCDN != "" {
		return fmt.Sprintf("https://%s/%s", cfg.MediaCDN, key)
	}
	if cfg.Mode == ObjectStorageModeGCSEmulator && cfg.PublicBaseURL == "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", cfg.EmulatorHost, url.PathEscape(name), url.PathEscape(key))
	}
	return fmt.Sprintf("%s/%s/%s", cfg.publicBase(), name, key)
}

// ManagedPrefix is the URL prefix every migrated media source starts with.
func (cfg StorageConfig) ManagedPrefix() string {
	if _, err := cfg.bucketName(BucketMedia); err != nil {
		return ""
	}
	return cfg.PublicURL(BucketMedia, "")
}

func (s *gcsStore) PublicURL(b Bucket, key string) string { return s.cfg.PublicURL(b, key) }

func (s *gcsStore) Upload(ctx context.Context, b Bucket, key string, r io.Reader) error {
	name, err := s.cfg.bucketName(b)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// Download returns a reader whose Close also releases the request context.
func (s *gcsStore) Download(ctx context.Context, b Bucket, key string) (io.ReadCloser, error) {
	name, err := s.cfg.bucketName(b)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if s.cfg.Mode == ObjectStorageModeGCSEmulator {
		rc, err := s.emulatorGet(ctx2, name, key)
		if err != nil {
			cancel()
			return nil, err
		}
		return &readCloserWithCancel{ReadCloser: rc, cancel: cancel}, nil
	}
	r, err := s.client.Bucket(name).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, notFound("gcp.Download", name, key, err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

// The emulator's JSON API serves media reliably over plain HTTP, the client
// library's XML reader path does not.
func (s *gcsStore) emulatorGet(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", s.cfg.EmulatorHost, url.PathEscape(bucket), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating emulator download request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed emulator download request: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, notFound("gcp.Download", bucket, key, storage.ErrObjectNotExist)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("emulator download failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

func (s *gcsStore) Attrs(ctx context.Context, b Bucket, key string) (*ObjectAttrs, error) {
	name, err := s.cfg.bucketName(b)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	attrs, err := s.client.Bucket(name).Object(key).Attrs(ctx)
	if err != nil {
		return nil, notFound("gcp.Attrs", name, key, err)
	}
	return &ObjectAttrs{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

func (s *gcsStore) Close() error { return s.client.Close() }

func notFound(op, bucket, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ads.NewError(ads.CodeNotFound, op, fmt.Sprintf("gs://%s/%s does not exist", bucket, key), ads.ErrNotFound)
	}
	return fmt.Errorf("%s gs://%s/%s: %w", op, bucket, key, err)
}

// Close must cancel the context only after the body has been read.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".html"), strings.HasSuffix(s, ".htm"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}
