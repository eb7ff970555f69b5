package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ganesh-omneky/data-health-dashboard/internal/app"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, log)
	if err != nil {
		log.Error("Failed to init app", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: application.Cfg.ServiceName,
		Environment: application.Cfg.Environment,
		Version:     application.Cfg.Version,
	})
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	if err := application.Serve(ctx); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
