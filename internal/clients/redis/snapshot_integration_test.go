package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

func TestNewSnapshotStoreRequiresAddr(t *testing.T) {
	if _, err := NewSnapshotStore(context.Background(), logger.Nop(), Config{}); err == nil {
		t.Fatalf("want error for empty addr")
	}
}

// Runs against a real server when REDIS_TEST_ADDR is set.
func TestSnapshotStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewSnapshotStore(ctx, logger.Nop(), Config{Addr: addr, Prefix: "dhd-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	var got map[string]int
	ok, err := s.Get(ctx, "missing", &got)
	if err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", map[string]int{"rows": 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = s.Get(ctx, "k", &got)
	if err != nil || !ok || got["rows"] != 3 {
		t.Fatalf("get: ok=%v got=%v err=%v", ok, got, err)
	}
}
