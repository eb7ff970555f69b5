package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ganesh-omneky/data-health-dashboard/internal/http/handlers"
	httpMW "github.com/ganesh-omneky/data-health-dashboard/internal/http/middleware"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler  *httpH.HealthHandler
	BrandHandler   *httpH.BrandHandler
	StatusHandler  *httpH.StatusHandler
	StatsHandler   *httpH.StatsHandler
	AccountHandler *httpH.AccountHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.Invocation())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Brands
		if cfg.BrandHandler != nil {
			api.GET("/brands", cfg.BrandHandler.ListBrands)
			api.GET("/brands/:id", cfg.BrandHandler.GetBrand)
			api.GET("/brands/:id/status", cfg.BrandHandler.GetBrandStatus)
		}

		// Status board
		if cfg.StatusHandler != nil {
			api.GET("/status", cfg.StatusHandler.ListStatuses)
		}

		// Insight stats
		if cfg.StatsHandler != nil {
			api.GET("/stats/insights", cfg.StatsHandler.InsightStats)
			api.GET("/report", cfg.StatsHandler.Report)
			api.POST("/report", cfg.StatsHandler.PublishReport)
		}

		// Accounts
		if cfg.AccountHandler != nil {
			api.GET("/accounts", cfg.AccountHandler.ListAccounts)
			api.GET("/accounts/:account/assets", cfg.AccountHandler.ListMedia)
			api.GET("/accounts/:account/ads", cfg.AccountHandler.ListAdsForAsset)
			api.GET("/accounts/:account/ads/:ad/assets", cfg.AccountHandler.ListAdAssets)
			api.GET("/accounts/:account/latest-insight", cfg.AccountHandler.LatestInsight)
		}
	}

	return r
}
