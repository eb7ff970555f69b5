package insights

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/testutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
)

func TestLatestDate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewInsightRepo(db, testutil.Logger(t))

	b := testutil.SeedBrand(t, ctx, db, "brand", true)
	pi := testutil.SeedPlatformInfo(t, ctx, db, b.ID, ads.ChannelFacebook, "act_1")
	empty := testutil.SeedPlatformInfo(t, ctx, db, b.ID, ads.ChannelGoogle, "g_1")
	testutil.SeedDailyInsight(t, ctx, db, pi.ID, "ad_1", "2024-06-08")
	testutil.SeedDailyInsight(t, ctx, db, pi.ID, "ad_1", "2024-06-09")
	testutil.SeedDailyInsight(t, ctx, db, pi.ID, "ad_2", "2024-05-01")

	got, err := repo.LatestDate(dbc, TableDaily, pi.ID)
	if err != nil {
		t.Fatalf("LatestDate: %v", err)
	}
	if got == nil || !got.Equal(testutil.Date("2024-06-09")) {
		t.Fatalf("LatestDate: want=2024-06-09 got=%v", got)
	}
	none, err := repo.LatestDate(dbc, TableDaily, empty.ID)
	if err != nil || none != nil {
		t.Fatalf("LatestDate empty: got=%v err=%v", none, err)
	}
	if _, err := repo.LatestDate(dbc, Table("users"), pi.ID); !ads.IsCode(err, ads.CodeValidation) {
		t.Fatalf("unknown table: want validation, got %v", err)
	}
}

func TestLatestDatesByBrandPlatform(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewInsightRepo(db, testutil.Logger(t))

	active := testutil.SeedBrand(t, ctx, db, "active", true)
	inactive := testutil.SeedBrand(t, ctx, db, "inactive", false)
	fb := testutil.SeedPlatformInfo(t, ctx, db, active.ID, ads.ChannelFacebook, "act_1")
	fb2 := testutil.SeedPlatformInfo(t, ctx, db, active.ID, ads.ChannelFacebook, "act_2")
	off := testutil.SeedPlatformInfo(t, ctx, db, inactive.ID, ads.ChannelFacebook, "act_3")
	testutil.SeedDailyInsight(t, ctx, db, fb.ID, "ad_1", "2024-06-01")
	testutil.SeedDailyInsight(t, ctx, db, fb2.ID, "ad_2", "2024-06-05")
	testutil.SeedDailyInsight(t, ctx, db, off.ID, "ad_3", "2024-06-07")

	got, err := repo.LatestDatesByBrandPlatform(dbc, TableDaily)
	if err != nil {
		t.Fatalf("LatestDatesByBrandPlatform: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows: want=1 got=%d (%v)", len(got), got)
	}
	key := BrandPlatform{BrandID: active.ID, PlatformID: uint(ads.ChannelFacebook)}
	if d, ok := got[key]; !ok || !d.Equal(testutil.Date("2024-06-05")) {
		t.Fatalf("max date: want=2024-06-05 got=%v", d)
	}

	images, err := repo.LatestDatesByBrandPlatform(dbc, TableImageAsset)
	if err != nil || len(images) != 0 {
		t.Fatalf("image insights: got=%v err=%v", images, err)
	}
}

func TestParseMaxDate(t *testing.T) {
	cases := map[string]string{
		"2024-06-10":                "2024-06-10",
		"2024-06-10T00:00:00Z":      "2024-06-10",
		"2024-06-10 00:00:00+00:00": "2024-06-10",
	}
	for in, want := range cases {
		got, err := parseMaxDate(sql.NullString{String: in, Valid: true})
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got.Format(ads.DateLayout) != want || got.Location() != time.UTC {
			t.Fatalf("%q: want=%s got=%v", in, want, got)
		}
	}
	if got, err := parseMaxDate(sql.NullString{}); err != nil || got != nil {
		t.Fatalf("null: got=%v err=%v", got, err)
	}
	if _, err := parseMaxDate(sql.NullString{String: "garbage", Valid: true}); err == nil {
		t.Fatalf("garbage: want error")
	}
}
