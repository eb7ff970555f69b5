package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/testutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

func TestAdsForAsset(t *testing.T) {
	e := newEnv(t)
	pi := e.account(e.brand("acme"), ads.ChannelFacebook, "act_1")
	direct := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "1", ads.AdCreative{VideoID: testutil.Str("v_1")})
	feed := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "2", ads.AdCreative{
		AssetFeedSpecJSON: datatypes.JSON(`{"videos":[{"video_id":"v_1"},{"video_id":"v_2"}],"images":[{"hash":"h_1"}]}`),
	})
	testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "3", ads.AdCreative{VideoID: testutil.Str("v_3")})
	svc := NewAssetService(testutil.Logger(t), e.set)

	got, err := svc.AdsForAsset(e.ctx, "act_1", ads.ChannelFacebook, ads.AssetVideo, "v_1")
	if err != nil {
		t.Fatalf("AdsForAsset: %v", err)
	}
	if len(got) != 2 || got[0].ID != direct.Ad.ID || got[1].ID != feed.Ad.ID {
		t.Fatalf("v_1 ads: got=%+v", got)
	}
	got, err = svc.AdsForAsset(e.ctx, "act_1", ads.ChannelFacebook, ads.AssetImage, "h_1")
	if err != nil || len(got) != 1 || got[0].ID != feed.Ad.ID {
		t.Fatalf("h_1 ads: got=%+v err=%v", got, err)
	}
	got, err = svc.AdsForAsset(e.ctx, "act_1", ads.ChannelFacebook, ads.AssetVideo, "nope")
	if err != nil || len(got) != 0 {
		t.Fatalf("unknown id: got=%+v err=%v", got, err)
	}
	if _, err := svc.AdsForAsset(e.ctx, "act_x", ads.ChannelFacebook, ads.AssetVideo, "v_1"); !ads.IsCode(err, ads.CodeNotFound) {
		t.Fatalf("unknown account: want not_found got %v", err)
	}
	if _, err := svc.AdsForAsset(e.ctx, "act_1", ads.ChannelFacebook, ads.AssetText, "x"); !ads.IsCode(err, ads.CodeValidation) {
		t.Fatalf("text kind: want validation got %v", err)
	}
}

func TestLatestInsightDateAndImportedIDs(t *testing.T) {
	e := newEnv(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	chain := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "1", ads.AdCreative{})
	testutil.SeedDailyInsight(t, e.ctx, e.db, pi.ID, chain.Ad.PlatformAdID, "2024-05-02")
	if err := e.db.Create(&ads.VideoAsset{AdID: chain.Ad.ID, PlatformAssetID: "v_9"}).Error; err != nil {
		t.Fatalf("seed video: %v", err)
	}
	svc := NewAssetService(testutil.Logger(t), e.set)

	d, err := svc.LatestInsightDate(e.ctx, "act_1", ads.ChannelFacebook)
	if err != nil || d == nil || d.Format(ads.DateLayout) != "2024-05-02" {
		t.Fatalf("latest: got=%v err=%v", d, err)
	}
	ids, err := svc.ImportedIDs(e.ctx, b.ID, ads.ChannelFacebook, ads.AssetVideo)
	if err != nil || len(ids) != 1 || ids[0] != "v_9" {
		t.Fatalf("imported: got=%v err=%v", ids, err)
	}
	ids, err = svc.ImportedIDs(e.ctx, b.ID, ads.ChannelGoogle, ads.AssetVideo)
	if err != nil || len(ids) != 0 {
		t.Fatalf("no google account: got=%v err=%v", ids, err)
	}
}
