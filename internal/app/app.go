package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/clients/redis"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/db"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/pipeline"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/upsert"
	"github.com/ganesh-omneky/data-health-dashboard/internal/jobs/runner"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/secrets"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

// App owns every long-lived dependency of the dashboard. The server and the
// CLI build the same graph.
type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Repos    repos.Set
	Engine   *upsert.Engine
	Pipeline *pipeline.Pipeline
	Runner   *runner.Runner
	Metrics  *observability.Metrics
	Services Services

	closers []func() error
}

// New wires the app. On error everything opened so far is closed.
func New(ctx context.Context, log *logger.Logger) (_ *App, err error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	a := &App{Log: log, Cfg: cfg, Metrics: observability.Init(log)}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	storageCfg, err := gcp.ResolveStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("object storage config: %w", err)
	}
	blobs, err := gcp.NewBlobStore(ctx, log, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	a.closers = append(a.closers, blobs.Close)

	provider, err := secrets.Load(ctx, log, blobs)
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	dbSvc, err := db.Open(ctx, db.ConfigFromEnv(log, provider.Get), log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.closers = append(a.closers, dbSvc.Close)
	a.DB = dbSvc.DB()

	managed := cfg.ManagedStorageURL
	if managed == "" {
		managed = storageCfg.ManagedPrefix()
	}
	a.Repos = repos.NewSet(a.DB, log)
	a.Engine = upsert.NewEngine(a.DB, log, managed).WithMetrics(a.Metrics)
	a.Pipeline = pipeline.New(a.Engine, a.Repos.PlatformInfo, a.Repos.Lookup, log)
	a.Runner = runner.New(log, runner.Config{MaxWorkers: cfg.TaskMaxWorkers, Metrics: a.Metrics})

	var faces gcp.FaceCounter
	if cfg.FaceDetection {
		faces, err = gcp.NewFaceCounter(ctx, log)
		if err != nil {
			return nil, fmt.Errorf("init face detection: %w", err)
		}
		a.closers = append(a.closers, faces.Close)
	}

	var shared services.SnapshotStore
	if cfg.RedisAddr != "" {
		store, err := redis.NewSnapshotStore(ctx, log, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		shared = store
	}

	a.Services = wireServices(log, a, provider, blobs, faces, shared)
	log.Info("App wired", "managed_prefix", managed, "redis", shared != nil, "face_detection", faces != nil)
	return a, nil
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases dependencies in reverse order of creation.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
