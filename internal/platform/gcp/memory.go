package gcp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

// MemoryStore is an in-process BlobStore for local runs and tests.
type MemoryStore struct {
	cfg     StorageConfig
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

type memObject struct {
	data    []byte
	updated time.Time
}

func NewMemoryStore(cfg StorageConfig) *MemoryStore {
	if cfg.Mode == "" {
		cfg.Mode = ObjectStorageModeMemory
	}
	return &MemoryStore{cfg: cfg, objects: map[string]memObject{}, now: time.Now}
}

func (m *MemoryStore) path(b Bucket, key string) (string, error) {
	name, err := m.cfg.bucketName(b)
	if err != nil {
		return "", err
	}
	return name + "/" + key, nil
}

func (m *MemoryStore) Upload(ctx context.Context, b Bucket, key string, r io.Reader) error {
	p, err := m.path(b, key)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	m.mu.Lock()
	m.objects[p] = memObject{data: data, updated: m.now().UTC()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) get(op string, b Bucket, key string) (memObject, error) {
	p, err := m.path(b, key)
	if err != nil {
		return memObject{}, err
	}
	m.mu.RLock()
	obj, ok := m.objects[p]
	m.mu.RUnlock()
	if !ok {
		return memObject{}, ads.NewError(ads.CodeNotFound, op, p+" does not exist", ads.ErrNotFound)
	}
	return obj, nil
}

func (m *MemoryStore) Download(ctx context.Context, b Bucket, key string) (io.ReadCloser, error) {
	obj, err := m.get("gcp.Download", b, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStore) Attrs(ctx context.Context, b Bucket, key string) (*ObjectAttrs, error) {
	obj, err := m.get("gcp.Attrs", b, key)
	if err != nil {
		return nil, err
	}
	sum := md5.Sum(obj.data)
	return &ObjectAttrs{
		Size:        int64(len(obj.data)),
		ContentType: contentTypeForKey(key),
		Updated:     obj.updated,
		ETag:        hex.EncodeToString(sum[:]),
	}, nil
}

func (m *MemoryStore) PublicURL(b Bucket, key string) string { return m.cfg.PublicURL(b, key) }

func (m *MemoryStore) Close() error { return nil }

// Keys lists stored object paths as "bucket/key".
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
