package app

import (
	"context"

	httpapi "github.com/ganesh-omneky/data-health-dashboard/internal/http"
	httpH "github.com/ganesh-omneky/data-health-dashboard/internal/http/handlers"
)

// Server builds the HTTP server over the wired services.
func (a *App) Server() *httpapi.Server {
	a.Log.Info("Wiring handlers...")
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:            a.Log,
		Metrics:        a.Metrics,
		ServiceName:    a.Cfg.ServiceName,
		CORSOrigins:    a.Cfg.CORSOrigins,
		HealthHandler:  httpH.NewHealthHandler(a.Ping),
		BrandHandler:   httpH.NewBrandHandler(a.Log, a.Services.Brands, a.Services.Status),
		StatusHandler:  httpH.NewStatusHandler(a.Log, a.Services.Status),
		StatsHandler:   httpH.NewStatsHandler(a.Log, a.Services.Stats),
		AccountHandler: httpH.NewAccountHandler(a.Log, a.Services.Assets),
	})
}

// Serve runs the API and, when configured, the metrics listener until ctx ends.
func (a *App) Serve(ctx context.Context) error {
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	return a.Server().Run(ctx, ":"+a.Cfg.Port)
}
