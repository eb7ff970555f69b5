package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

// AutoMigrateAll creates or extends the dashboard tables. Production uses the
// existing legacy schema; this is for sqlite development databases and tests.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(ads.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedPlatforms(db)
}

// SeedPlatforms makes sure every channel has its platforms row.
func SeedPlatforms(db *gorm.DB) error {
	channels := append(append([]ads.Channel{}, ads.AdChannels...), ads.ChannelOmnichannel)
	for _, c := range channels {
		p := ads.Platform{ID: uint(c), Name: c.PlatformName()}
		if err := db.Where(ads.Platform{ID: p.ID}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed platform %s: %w", c, err)
		}
	}
	return nil
}
