package app

import (
	"errors"
	"testing"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STATS_CACHE_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	cfg := LoadConfig(logger.Nop())

	if cfg.Port != "9090" {
		t.Fatalf("port: want=9090 got=%s", cfg.Port)
	}
	if cfg.StatsCacheTTL != 15*time.Minute {
		t.Fatalf("ttl: want=15m got=%s", cfg.StatsCacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins: got=%v", cfg.CORSOrigins)
	}
	if cfg.TaskMaxWorkers != 16 {
		t.Fatalf("workers: want=16 got=%d", cfg.TaskMaxWorkers)
	}
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	a := &App{Log: logger.Nop(), closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
	}}
	if err := a.Close(); !errors.Is(err, boom) {
		t.Fatalf("close err: want=boom got=%v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("order: got=%v", order)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
