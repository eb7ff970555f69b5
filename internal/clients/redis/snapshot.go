// Package redis shares cached snapshots between dashboard processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

const defaultPrefix = "dhd:"

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// SnapshotStore keeps JSON-encoded values under prefixed keys with a TTL.
type SnapshotStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewSnapshotStore connects and pings. An empty Addr is a configuration error.
func NewSnapshotStore(ctx context.Context, log *logger.Logger, cfg Config) (*SnapshotStore, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis snapshot store connected", "addr", addr, "prefix", prefix)
	return &SnapshotStore{log: log.With("client", "RedisSnapshotStore"), rdb: rdb, prefix: prefix}, nil
}

func (s *SnapshotStore) key(k string) string { return s.prefix + k }

// Get decodes the value at key into dst. A missing key is (false, nil).
func (s *SnapshotStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return true, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *SnapshotStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
