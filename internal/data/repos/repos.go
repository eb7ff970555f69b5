package repos

import (
	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/accounts"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/assets"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/entities"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/insights"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type BrandRepo = accounts.BrandRepo
type PlatformInfoRepo = accounts.PlatformInfoRepo
type Association = accounts.Association

type LookupRepo = entities.LookupRepo
type CreativeRepo = entities.CreativeRepo
type AdRepo = entities.AdRepo

type AssetRepo = assets.AssetRepo
type InsightRepo = insights.InsightRepo

// Set holds one instance of every repo over a shared handle.
type Set struct {
	Brands       BrandRepo
	PlatformInfo PlatformInfoRepo
	Lookup       LookupRepo
	Creatives    CreativeRepo
	Ads          AdRepo
	Assets       AssetRepo
	Insights     InsightRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Brands:       accounts.NewBrandRepo(db, log),
		PlatformInfo: accounts.NewPlatformInfoRepo(db, log),
		Lookup:       entities.NewLookupRepo(db, log),
		Creatives:    entities.NewCreativeRepo(db, log),
		Ads:          entities.NewAdRepo(db, log),
		Assets:       assets.NewAssetRepo(db, log),
		Insights:     insights.NewInsightRepo(db, log),
	}
}
