package app

import (
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/airbyte"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/secrets"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

type Services struct {
	Brands services.BrandService
	Status services.StatusService
	Stats  services.StatsService
	Media  services.MediaService
	Assets services.AssetService
}

func wireServices(
	log *logger.Logger,
	a *App,
	provider secrets.Provider,
	blobs gcp.BlobStore,
	faces gcp.FaceCounter,
	shared services.SnapshotStore,
) Services {
	log.Info("Wiring services...")

	// Without any workspace sync status reads UNKNOWN everywhere.
	var abClient airbyte.Client
	abCfg := airbyte.ConfigFromSecrets(provider)
	abCfg.Timeout = a.Cfg.AirbyteTimeout
	if len(abCfg.Workspaces) > 0 {
		abClient = airbyte.New(abCfg, log)
	} else {
		log.Warn("No Airbyte workspace configured; sync status will be UNKNOWN")
	}

	freshness := services.NewFreshnessEvaluator(a.Repos.PlatformInfo, a.Repos.Insights, log)
	sync := services.NewSyncStatusEvaluator(abClient, log)

	statsCfg := services.StatsConfig{TTL: a.Cfg.StatsCacheTTL, Shared: shared}

	return Services{
		Brands: services.NewBrandService(log, a.Repos.Brands, a.Repos.PlatformInfo),
		Status: services.NewStatusService(log, a.Repos.Brands, a.Repos.PlatformInfo, freshness, sync, a.Runner, a.Metrics),
		Stats:  services.NewStatsService(log, a.Repos.PlatformInfo, a.Repos.Insights, blobs, a.Metrics, statsCfg),
		Media:  services.NewMediaService(log, a.Repos.PlatformInfo, a.Repos.Assets, a.Engine, blobs, faces, a.Runner, a.Metrics),
		Assets: services.NewAssetService(log, a.Repos),
	}
}
