package entities

import (
	"context"
	"testing"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/testutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
)

func TestLookupRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)

	b := testutil.SeedBrand(t, ctx, db, "brand", true)
	pi := testutil.SeedPlatformInfo(t, ctx, db, b.ID, ads.ChannelFacebook, "act_1")
	other := testutil.SeedPlatformInfo(t, ctx, db, b.ID, ads.ChannelGoogle, "g_1")
	chain := testutil.SeedAdChain(t, ctx, db, pi.ID, "1", ads.AdCreative{})

	repo := NewLookupRepo(db, log)
	checks := []struct {
		name string
		fn   func() (uint, error)
		want uint
	}{
		{"campaign", func() (uint, error) { return repo.CampaignID(dbc, pi.ID, "cmp_1") }, chain.Campaign.ID},
		{"ad group", func() (uint, error) { return repo.AdGroupID(dbc, pi.ID, "grp_1") }, chain.AdGroup.ID},
		{"creative", func() (uint, error) { return repo.AdCreativeID(dbc, pi.ID, "crt_1") }, chain.Creative.ID},
		{"ad", func() (uint, error) { return repo.AdID(dbc, pi.ID, "ad_1") }, chain.Ad.ID},
		{"other account", func() (uint, error) { return repo.AdID(dbc, other.ID, "ad_1") }, 0},
		{"missing", func() (uint, error) { return repo.CampaignID(dbc, pi.ID, "nope") }, 0},
		{"empty id", func() (uint, error) { return repo.CampaignID(dbc, pi.ID, "") }, 0},
	}
	for _, c := range checks {
		got, err := c.fn()
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: want=%d got=%d", c.name, c.want, got)
		}
	}
}

func TestAdRepoListByCreatives(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)

	b := testutil.SeedBrand(t, ctx, db, "brand", true)
	pi := testutil.SeedPlatformInfo(t, ctx, db, b.ID, ads.ChannelFacebook, "act_1")
	c1 := testutil.SeedAdChain(t, ctx, db, pi.ID, "1", ads.AdCreative{})
	testutil.SeedAdChain(t, ctx, db, pi.ID, "2", ads.AdCreative{})

	creatives, err := NewCreativeRepo(db, log).ListByPlatformInfo(dbc, pi.ID)
	if err != nil || len(creatives) != 2 {
		t.Fatalf("ListByPlatformInfo: len=%d err=%v", len(creatives), err)
	}

	adRepo := NewAdRepo(db, log)
	got, err := adRepo.ListByCreatives(dbc, pi.ID, []uint{c1.Creative.ID})
	if err != nil {
		t.Fatalf("ListByCreatives: %v", err)
	}
	if len(got) != 1 || got[0].PlatformAdID != "ad_1" {
		t.Fatalf("ListByCreatives: got=%+v", got)
	}
	empty, err := adRepo.ListByCreatives(dbc, pi.ID, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListByCreatives empty: got=%v err=%v", empty, err)
	}

	ad, err := adRepo.GetByPlatformAdID(dbc, pi.ID, "ad_2")
	if err != nil || ad == nil {
		t.Fatalf("GetByPlatformAdID: got=%v err=%v", ad, err)
	}
	if missing, err := adRepo.GetByPlatformAdID(dbc, pi.ID, "ad_9"); err != nil || missing != nil {
		t.Fatalf("GetByPlatformAdID missing: got=%v err=%v", missing, err)
	}
}
