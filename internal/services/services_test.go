package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/testutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/jobs/runner"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/airbyte"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(raw string) *fakeClock {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeAirbyte struct {
	conns map[ads.Channel][]airbyte.Connection
	err   map[ads.Channel]error
}

func (f *fakeAirbyte) ListConnections(_ context.Context, ch ads.Channel) ([]airbyte.Connection, error) {
	if err := f.err[ch]; err != nil {
		return nil, err
	}
	if !airbyte.Supported(ch) {
		return nil, ads.NewError(ads.CodeUnknownChannel, "fake", "unsupported", ads.ErrUnknownChannel)
	}
	return f.conns[ch], nil
}

type env struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	set   repos.Set
	run   *runner.Runner
	store *gcp.MemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &env{
		t:   t,
		ctx: context.Background(),
		db:  db,
		set: repos.NewSet(db, log),
		run: runner.New(log, runner.Config{MaxWorkers: 4}),
		store: gcp.NewMemoryStore(gcp.StorageConfig{
			Mode:          gcp.ObjectStorageModeMemory,
			PublicBaseURL: "https://cdn.test",
			MediaBucket:   "media-b",
			ReportBucket:  "reports-b",
		}),
	}
}

func (e *env) brand(name string) *ads.Brand {
	return testutil.SeedBrand(e.t, e.ctx, e.db, name, true)
}

func (e *env) account(b *ads.Brand, ch ads.Channel, accountID string) *ads.PlatformInfo {
	return testutil.SeedPlatformInfo(e.t, e.ctx, e.db, b.ID, ch, accountID)
}

func (e *env) statusService(client airbyte.Client, clock *fakeClock) StatusService {
	log := testutil.Logger(e.t)
	fresh := NewFreshnessEvaluator(e.set.PlatformInfo, e.set.Insights, log).WithClock(clock.Now)
	return NewStatusService(log, e.set.Brands, e.set.PlatformInfo, fresh, NewSyncStatusEvaluator(client, log), e.run, nil)
}

var errBoom = errors.New("boom")

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
