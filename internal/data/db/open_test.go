package db

import (
	"context"
	"testing"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

func TestDSNBuilders(t *testing.T) {
	cfg := Config{User: "u", Password: "p@ss", Host: "db", Port: "3306", Name: "omneky"}
	if got := mysqlDSN(cfg); got != "u:p@ss@tcp(db:3306)/omneky?charset=utf8mb4&parseTime=true&loc=UTC" {
		t.Fatalf("mysql dsn: got %q", got)
	}
	cfg.Port = "5432"
	if got := postgresDSN(cfg); got != "postgres://u:p%40ss@db:5432/omneky?sslmode=disable" {
		t.Fatalf("postgres dsn: got %q", got)
	}
	cfg.DSN = "override"
	if mysqlDSN(cfg) != "override" || postgresDSN(cfg) != "override" {
		t.Fatalf("DSN override ignored")
	}
	if _, err := dialectorFor(Config{Driver: "oracle"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestOpenSQLiteMigratesAndSeeds(t *testing.T) {
	s, err := Open(context.Background(), Config{
		Driver:      DriverSQLite,
		DSN:         "file:open_test?mode=memory&cache=shared",
		AutoMigrate: true,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	var platforms []ads.Platform
	if err := s.DB().Order("id").Find(&platforms).Error; err != nil {
		t.Fatalf("list platforms: %v", err)
	}
	if len(platforms) != len(ads.AdChannels)+1 {
		t.Fatalf("platforms: want=%d got=%d", len(ads.AdChannels)+1, len(platforms))
	}
	if platforms[0].ID != 1 || platforms[0].Name != "facebook" {
		t.Fatalf("first platform: got %+v", platforms[0])
	}
	if err := SeedPlatforms(s.DB()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
}
