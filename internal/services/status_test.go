package services

import (
	"strings"
	"testing"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/testutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/airbyte"
)

func datePtr(raw string) *time.Time {
	d := testutil.Date(raw)
	return &d
}

func TestClassifyFreshnessLiteralCases(t *testing.T) {
	for _, now := range []string{"2024-06-10T00:00:00Z", "2024-06-10T13:45:00Z", "2024-06-10T23:59:59Z"} {
		at, _ := time.Parse(time.RFC3339, now)
		cases := []struct {
			last *time.Time
			want ads.Status
		}{
			{nil, ads.StatusUnknown},
			{datePtr("2024-06-09"), ads.StatusWarning},
			{datePtr("2024-06-08"), ads.StatusFailed},
			{datePtr("2024-06-10"), ads.StatusOK},
			{datePtr("2024-06-11"), ads.StatusOK},
		}
		for _, tc := range cases {
			got := ClassifyFreshness(at, tc.last, 7, ads.ChannelFacebook)
			if got.Status != tc.want {
				t.Fatalf("now=%s last=%v: want=%s got=%s", now, tc.last, tc.want, got.Status)
			}
			if got.BrandID != 7 || got.Channel != "FACEBOOK" || got.Color != tc.want.ColorHex() {
				t.Fatalf("result fields: got=%+v", got)
			}
		}
	}
	if got := ClassifyFreshness(time.Now(), nil, 1, ads.ChannelGoogle); got.Message != "No insights in DB" {
		t.Fatalf("unknown message: got=%q", got.Message)
	}
	at, _ := time.Parse(time.RFC3339, "2024-06-10T08:00:00Z")
	if got := ClassifyFreshness(at, datePtr("2024-06-09"), 1, ads.ChannelGoogle); got.Message != "last insight in DB: 2024-06-09" {
		t.Fatalf("message: got=%q", got.Message)
	}
}

func TestFreshnessEvaluator(t *testing.T) {
	e := newEnv(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	testutil.SeedDailyInsight(t, e.ctx, e.db, pi.ID, "ad_1", "2024-06-08")
	testutil.SeedDailyInsight(t, e.ctx, e.db, pi.ID, "ad_1", "2024-06-09")

	clock := newClock("2024-06-10T09:00:00Z")
	f := NewFreshnessEvaluator(e.set.PlatformInfo, e.set.Insights, testutil.Logger(t)).WithClock(clock.Now)

	got, err := f.Evaluate(e.ctx, b.ID, ads.ChannelFacebook)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Status != ads.StatusWarning || got.Message != "last insight in DB: 2024-06-09" {
		t.Fatalf("facebook: got=%+v", got)
	}

	got, err = f.Evaluate(e.ctx, b.ID, ads.ChannelTikTok)
	if err != nil || got.Status != ads.StatusUnknown {
		t.Fatalf("no account: want UNKNOWN got=%+v err=%v", got, err)
	}

	if _, err := f.Evaluate(e.ctx, b.ID, ads.Channel(42)); !ads.IsCode(err, ads.CodeUnknownChannel) {
		t.Fatalf("bad channel: want unknown_channel got %v", err)
	}
}

func TestClassifyConnections(t *testing.T) {
	conn := func(status string) airbyte.Connection {
		return airbyte.Connection{Name: "fb_3_" + status, Status: status}
	}
	cases := []struct {
		name  string
		conns []airbyte.Connection
		want  ads.Status
	}{
		{"none", nil, ads.StatusUnknown},
		{"all active", []airbyte.Connection{conn("active"), conn("active")}, ads.StatusOK},
		{"one inactive", []airbyte.Connection{conn("active"), conn("inactive")}, ads.StatusWarning},
		{"deprecated wins", []airbyte.Connection{conn("inactive"), conn("deprecated")}, ads.StatusFailed},
	}
	for _, tc := range cases {
		if got := classifyConnections(tc.conns, 3, ads.ChannelFacebook); got.Status != tc.want {
			t.Fatalf("%s: want=%s got=%s (%s)", tc.name, tc.want, got.Status, got.Message)
		}
	}
}

func TestSyncStatusEvaluator(t *testing.T) {
	log := testutil.Logger(t)
	client := &fakeAirbyte{conns: map[ads.Channel][]airbyte.Connection{
		ads.ChannelFacebook: {
			{Name: "facebook_3_main", Status: "active"},
			{Name: "facebook_4_main", Status: "deprecated"},
		},
		ads.ChannelGoogle: {{Name: "broken-name", Status: "active"}},
	}}
	s := NewSyncStatusEvaluator(client, log)
	ctx := newEnv(t).ctx

	got, err := s.Evaluate(ctx, 3, ads.ChannelFacebook)
	if err != nil || got.Status != ads.StatusOK {
		t.Fatalf("brand 3: got=%+v err=%v", got, err)
	}
	got, err = s.Evaluate(ctx, 4, ads.ChannelFacebook)
	if err != nil || got.Status != ads.StatusFailed {
		t.Fatalf("brand 4: got=%+v err=%v", got, err)
	}
	if _, err := s.Evaluate(ctx, 3, ads.ChannelTikTok); !ads.IsCode(err, ads.CodeUnknownChannel) {
		t.Fatalf("tiktok: want unknown_channel got %v", err)
	}
	cfgMissing := NewSyncStatusEvaluator(&fakeAirbyte{err: map[ads.Channel]error{
		ads.ChannelFacebook: ads.NewError(ads.CodeConfig, "fake", "no workspace id", ads.ErrMissingConfig),
	}}, log)
	got, err = cfgMissing.Evaluate(ctx, 3, ads.ChannelFacebook)
	if err != nil || got.Status != ads.StatusUnknown || !strings.Contains(got.Message, "FACEBOOK") {
		t.Fatalf("unconfigured workspace: got=%+v err=%v", got, err)
	}
	if _, err := s.Evaluate(ctx, 3, ads.ChannelGoogle); err == nil {
		t.Fatalf("unparseable connection name: want error")
	}
}

func TestBrandStatus(t *testing.T) {
	e := newEnv(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	testutil.SeedDailyInsight(t, e.ctx, e.db, pi.ID, "ad_1", "2024-06-10")
	client := &fakeAirbyte{conns: map[ads.Channel][]airbyte.Connection{
		ads.ChannelFacebook: {{Name: "facebook_" + itoa(b.ID) + "_x", Status: "inactive"}},
	}}
	svc := e.statusService(client, newClock("2024-06-10T10:00:00Z"))

	st, err := svc.BrandStatus(e.ctx, b.ID, ads.ChannelFacebook)
	if err != nil {
		t.Fatalf("BrandStatus: %v", err)
	}
	if st.OTL.Status != ads.StatusOK || st.Airbyte.Status != ads.StatusWarning || st.BrandName != "acme" {
		t.Fatalf("status: got=%+v", st)
	}
	if _, err := svc.BrandStatus(e.ctx, 999, ads.ChannelFacebook); !ads.IsCode(err, ads.CodeNotFound) {
		t.Fatalf("missing brand: want not_found got %v", err)
	}
}

func TestAllStatusesRecordsFailedRows(t *testing.T) {
	e := newEnv(t)
	a := e.brand("a")
	e.account(a, ads.ChannelFacebook, "act_a")
	e.account(a, ads.ChannelGoogle, "g_a")
	b := e.brand("b")
	e.account(b, ads.ChannelFacebook, "act_b")

	client := &fakeAirbyte{
		conns: map[ads.Channel][]airbyte.Connection{ads.ChannelFacebook: {{Name: "facebook_" + itoa(a.ID) + "_x", Status: "active"}}},
		err:   map[ads.Channel]error{ads.ChannelGoogle: ads.NewError(ads.CodeUpstream, "fake", "down", errBoom)},
	}
	rows, err := e.statusService(client, newClock("2024-06-10T10:00:00Z")).AllStatuses(e.ctx)
	if err != nil {
		t.Fatalf("AllStatuses: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(rows))
	}
	if rows[0].BrandID != a.ID || rows[0].Channel != ads.ChannelFacebook || rows[0].Airbyte.Status != ads.StatusOK || rows[0].Error != "" {
		t.Fatalf("row 0: got=%+v", rows[0])
	}
	if rows[1].Channel != ads.ChannelGoogle || rows[1].Error == "" || rows[1].OTL.Status != ads.StatusUnknown || rows[1].AccountID != "g_a" {
		t.Fatalf("row 1 should carry the upstream failure: got=%+v", rows[1])
	}
	if rows[2].BrandID != b.ID || rows[2].Airbyte.Status != ads.StatusUnknown || rows[2].Error != "" {
		t.Fatalf("row 2: got=%+v", rows[2])
	}
}

func TestAllStatusesGradesEachAccount(t *testing.T) {
	e := newEnv(t)
	b := e.brand("acme")
	first := e.account(b, ads.ChannelFacebook, "act_old")
	second := e.account(b, ads.ChannelFacebook, "act_new")
	testutil.SeedDailyInsight(t, e.ctx, e.db, first.ID, "ad_1", "2024-06-01")
	testutil.SeedDailyInsight(t, e.ctx, e.db, second.ID, "ad_2", "2024-06-10")
	client := &fakeAirbyte{conns: map[ads.Channel][]airbyte.Connection{
		ads.ChannelFacebook: {{Name: "facebook_" + itoa(b.ID) + "_x", Status: "active"}},
	}}

	rows, err := e.statusService(client, newClock("2024-06-10T10:00:00Z")).AllStatuses(e.ctx)
	if err != nil {
		t.Fatalf("AllStatuses: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	if rows[0].AccountID != "act_old" || rows[0].OTL.Status != ads.StatusFailed {
		t.Fatalf("old account: want FAILED got=%+v", rows[0])
	}
	if rows[1].AccountID != "act_new" || rows[1].OTL.Status != ads.StatusOK {
		t.Fatalf("new account: want OK got=%+v", rows[1])
	}
}
