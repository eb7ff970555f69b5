package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

func Str(s string) *string { return &s }

func Int(i int) *int { return &i }

func Date(raw string) time.Time {
	t, err := time.Parse(ads.DateLayout, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func SeedBrand(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, active bool) *ads.Brand {
	tb.Helper()
	b := &ads.Brand{CompanyID: 1, Name: name, IsActive: active}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed brand: %v", err)
	}
	return b
}

func SeedPlatformInfo(tb testing.TB, ctx context.Context, tx *gorm.DB, brandID uint, channel ads.Channel, accountID string) *ads.PlatformInfo {
	tb.Helper()
	pi := &ads.PlatformInfo{
		PlatformID:  uint(channel),
		BrandID:     brandID,
		AccountID:   accountID,
		AccountName: Str("account " + accountID),
		Token1:      Str("secret-token"),
	}
	if err := tx.WithContext(ctx).Create(pi).Error; err != nil {
		tb.Fatalf("seed platform info: %v", err)
	}
	return pi
}

type AdChain struct {
	Campaign *ads.Campaign
	AdGroup  *ads.AdGroup
	Creative *ads.AdCreative
	Ad       *ads.Ad
}

// SeedAdChain inserts campaign -> ad group -> creative -> ad rows for one account.
func SeedAdChain(tb testing.TB, ctx context.Context, tx *gorm.DB, platformInfoID uint, suffix string, creative ads.AdCreative) AdChain {
	tb.Helper()
	db := tx.WithContext(ctx)
	c := &ads.Campaign{PlatformInfoID: platformInfoID, PlatformCampaignID: "cmp_" + suffix, Name: Str("campaign " + suffix)}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed campaign: %v", err)
	}
	g := &ads.AdGroup{PlatformInfoID: platformInfoID, CampaignID: c.ID, PlatformAdGroupID: "grp_" + suffix}
	if err := db.Create(g).Error; err != nil {
		tb.Fatalf("seed ad group: %v", err)
	}
	creative.PlatformInfoID = platformInfoID
	if creative.PlatformAdCreativeID == "" {
		creative.PlatformAdCreativeID = "crt_" + suffix
	}
	if err := db.Create(&creative).Error; err != nil {
		tb.Fatalf("seed creative: %v", err)
	}
	a := &ads.Ad{PlatformInfoID: platformInfoID, AdGroupID: g.ID, AdCreativeID: creative.ID, PlatformAdID: "ad_" + suffix}
	if err := db.Create(a).Error; err != nil {
		tb.Fatalf("seed ad: %v", err)
	}
	return AdChain{Campaign: c, AdGroup: g, Creative: &creative, Ad: a}
}

func SeedDailyInsight(tb testing.TB, ctx context.Context, tx *gorm.DB, platformInfoID uint, adID, date string) {
	tb.Helper()
	row := &ads.DailyInsight{PlatformInfoID: platformInfoID, PlatformAdID: adID, Date: Date(date), Spend: Str("1.00")}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed daily insight: %v", err)
	}
}
