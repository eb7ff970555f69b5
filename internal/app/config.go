package app

import (
	"strings"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/jobs/runner"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/envutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/services"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string

	Port        string
	MetricsAddr string
	CORSOrigins []string

	// ManagedStorageURL overrides the media prefix derived from the bucket
	// settings, for deployments that front the bucket with another host.
	ManagedStorageURL string

	StatsCacheTTL  time.Duration
	TaskMaxWorkers int
	RedisAddr      string
	RedisPassword  string

	FaceDetection bool
	AirbyteTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	var origins []string
	for _, o := range strings.Split(envutil.GetEnv("CORS_ORIGINS", "", log), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		ServiceName:       envutil.GetEnv("SERVICE_NAME", "data-health-dashboard", log),
		Environment:       envutil.GetEnv("ENVIRONMENT", "development", log),
		Version:           envutil.GetEnv("VERSION", "dev", log),
		Port:              envutil.GetEnv("PORT", "8080", log),
		MetricsAddr:       envutil.GetEnv("METRICS_ADDR", "", log),
		CORSOrigins:       origins,
		ManagedStorageURL: strings.TrimSpace(envutil.GetEnv("MANAGED_STORAGE_URL", "", log)),
		StatsCacheTTL:     envutil.GetEnvAsDuration("STATS_CACHE_TTL", services.DefaultStatsTTL, log),
		TaskMaxWorkers:    envutil.GetEnvAsInt("TASK_MAX_WORKERS", runner.DefaultMaxWorkers, log),
		RedisAddr:         strings.TrimSpace(envutil.GetEnv("REDIS_ADDR", "", log)),
		RedisPassword:     envutil.GetEnv("REDIS_PASSWORD", "", log),
		FaceDetection:     envutil.GetEnvAsBool("FACE_DETECTION_ENABLED", false, log),
		AirbyteTimeout:    envutil.GetEnvAsDuration("AIRBYTE_TIMEOUT", 30*time.Second, log),
	}
}
