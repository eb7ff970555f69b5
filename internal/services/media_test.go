package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/testutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/upsert"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
)

type fakeFaces struct{ calls atomic.Int64 }

func (f *fakeFaces) CountFaces(_ context.Context, uri string) (int, error) {
	f.calls.Add(1)
	return 2, nil
}

func (f *fakeFaces) Close() error { return nil }

func mediaServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (e *env) mediaService(faces gcp.FaceCounter) MediaService {
	log := testutil.Logger(e.t)
	eng := upsert.NewEngine(e.db, log, gcp.StorageConfig{
		Mode: gcp.ObjectStorageModeMemory, PublicBaseURL: "https://cdn.test", MediaBucket: "media-b",
	}.ManagedPrefix())
	return NewMediaService(log, e.set.PlatformInfo, e.set.Assets, eng, e.store, faces, e.run, nil)
}

func TestMediaKey(t *testing.T) {
	if got := MediaKey(3, ads.ChannelFacebook, ads.AssetImage, "abc", "https://fb.test/x/y.JPG?sig=1"); got != "3/facebook/image/abc.jpg" {
		t.Fatalf("key: got=%s", got)
	}
	if got := MediaKey(3, ads.ChannelGoogle, ads.AssetVideo, "v/1", "https://g.test/watch"); got != "3/google/video/v%2F1" {
		t.Fatalf("key without ext: got=%s", got)
	}
}

func TestMigrateCopiesAndRepointsSources(t *testing.T) {
	e := newEnv(t)
	srv := mediaServer(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	chain := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "1", ads.AdCreative{})
	for _, img := range []*ads.ImageAsset{
		{AdID: chain.Ad.ID, PlatformAssetID: "good", Source: testutil.Str(srv.URL + "/ok.png")},
		{AdID: chain.Ad.ID, PlatformAssetID: "gone", Source: testutil.Str(srv.URL + "/missing.png")},
	} {
		if err := e.db.Create(img).Error; err != nil {
			t.Fatalf("seed image: %v", err)
		}
	}
	svc := e.mediaService(nil)

	pending, err := svc.UnprocessedSources(e.ctx, b.ID, ads.ChannelFacebook, ads.AssetImage)
	if err != nil || len(pending) != 2 {
		t.Fatalf("unprocessed: got=%v err=%v", pending, err)
	}

	report, err := svc.Migrate(e.ctx, b.ID, ads.ChannelFacebook, ads.AssetImage)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 1 || report.Failed != 1 {
		t.Fatalf("report: got=%+v", report)
	}
	// outcomes are ordered by asset id
	if report.Outcomes[0].AssetID != "gone" || report.Outcomes[0].Error == "" {
		t.Fatalf("failed outcome: got=%+v", report.Outcomes[0])
	}
	want := "https://cdn.test/media-b/" + itoa(b.ID) + "/facebook/image/good.png"
	if o := report.Outcomes[1]; o.Target != want || o.Rows != 1 {
		t.Fatalf("migrated outcome: got=%+v", o)
	}

	var stored ads.ImageAsset
	if err := e.db.Where("platform_asset_id = ?", "good").Take(&stored).Error; err != nil {
		t.Fatalf("load image: %v", err)
	}
	if stored.Source == nil || *stored.Source != want {
		t.Fatalf("source not repointed: got=%v", stored.Source)
	}
	rc, err := e.store.Download(e.ctx, gcp.BucketMedia, itoa(b.ID)+"/facebook/image/good.png")
	if err != nil {
		t.Fatalf("download copy: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "png-bytes" {
		t.Fatalf("copy: got=%q", data)
	}

	pending, _ = svc.UnprocessedSources(e.ctx, b.ID, ads.ChannelFacebook, ads.AssetImage)
	if len(pending) != 1 || pending["gone"] == "" {
		t.Fatalf("after migrate: got=%v", pending)
	}
}

func TestMigrateUnknownBrandAccount(t *testing.T) {
	e := newEnv(t)
	svc := e.mediaService(nil)
	if _, err := svc.Migrate(e.ctx, 404, ads.ChannelFacebook, ads.AssetImage); !ads.IsCode(err, ads.CodeNotFound) {
		t.Fatalf("want not_found got %v", err)
	}
	if _, err := svc.Migrate(e.ctx, 1, ads.ChannelOmnichannel, ads.AssetImage); !ads.IsCode(err, ads.CodeUnknownChannel) {
		t.Fatalf("want unknown_channel got %v", err)
	}
}

func TestCountFacesFillsMigratedImages(t *testing.T) {
	e := newEnv(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	chain := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "1", ads.AdCreative{})
	for _, img := range []*ads.ImageAsset{
		{AdID: chain.Ad.ID, PlatformAssetID: "m1", Source: testutil.Str("https://cdn.test/media-b/1/facebook/image/m1")},
		{AdID: chain.Ad.ID, PlatformAssetID: "m2", Source: testutil.Str("https://cdn.test/media-b/1/facebook/image/m2"), NoOfFaces: testutil.Int(5)},
		{AdID: chain.Ad.ID, PlatformAssetID: "raw", Source: testutil.Str("https://fb.test/raw.png")},
	} {
		if err := e.db.Create(img).Error; err != nil {
			t.Fatalf("seed image: %v", err)
		}
	}
	faces := &fakeFaces{}
	out, err := e.mediaService(faces).CountFaces(e.ctx, b.ID, ads.ChannelFacebook)
	if err != nil {
		t.Fatalf("CountFaces: %v", err)
	}
	if len(out) != 1 || out[0].Faces != 2 || out[0].Error != "" || faces.calls.Load() != 1 {
		t.Fatalf("outcomes: got=%+v calls=%d", out, faces.calls.Load())
	}
	var stored ads.ImageAsset
	_ = e.db.Where("platform_asset_id = ?", "m1").Take(&stored).Error
	if stored.NoOfFaces == nil || *stored.NoOfFaces != 2 {
		t.Fatalf("faces not stored: got=%v", stored.NoOfFaces)
	}

	if _, err := e.mediaService(nil).CountFaces(e.ctx, b.ID, ads.ChannelFacebook); !ads.IsCode(err, ads.CodeConfig) {
		t.Fatalf("no face counter: want config error got %v", err)
	}
}

func TestMigrateUnderOverriddenManagedPrefix(t *testing.T) {
	e := newEnv(t)
	srv := mediaServer(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	chain := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "1", ads.AdCreative{})
	img := &ads.ImageAsset{AdID: chain.Ad.ID, PlatformAssetID: "good", Source: testutil.Str(srv.URL + "/ok.png")}
	if err := e.db.Create(img).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}
	log := testutil.Logger(t)
	eng := upsert.NewEngine(e.db, log, "https://media.example.com/")
	svc := NewMediaService(log, e.set.PlatformInfo, e.set.Assets, eng, e.store, nil, e.run, nil)

	report, err := svc.Migrate(e.ctx, b.ID, ads.ChannelFacebook, ads.AssetImage)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if report.Migrated != 1 || report.Failed != 0 {
		t.Fatalf("report: want 1 migrated got=%+v", report)
	}
	want := "https://media.example.com/" + itoa(b.ID) + "/facebook/image/good.png"
	if o := report.Outcomes[0]; o.Target != want || o.Rows != 1 {
		t.Fatalf("outcome: want target=%s got=%+v", want, o)
	}
	pending, _ := svc.UnprocessedSources(e.ctx, b.ID, ads.ChannelFacebook, ads.AssetImage)
	if len(pending) != 0 {
		t.Fatalf("after migrate: want none pending got=%v", pending)
	}
}

func TestManagedURLJoin(t *testing.T) {
	for prefix, want := range map[string]string{
		"https://m.test/":    "https://m.test/1/a.png",
		"https://m.test":     "https://m.test/1/a.png",
		"https://m.test/b/x": "https://m.test/b/x/1/a.png",
	} {
		if got := ManagedURL(prefix, "1/a.png"); got != want {
			t.Fatalf("ManagedURL(%q): want=%s got=%s", prefix, want, got)
		}
	}
}

func TestEnrichmentQueuesThroughService(t *testing.T) {
	e := newEnv(t)
	b := e.brand("acme")
	pi := e.account(b, ads.ChannelFacebook, "act_1")
	chain := testutil.SeedAdChain(t, e.ctx, e.db, pi.ID, "1", ads.AdCreative{})
	rows := []any{
		&ads.ImageAsset{AdID: chain.Ad.ID, PlatformAssetID: "i1", Source: testutil.Str("https://fb.test/i1.png")},
		&ads.ImageAsset{AdID: chain.Ad.ID, PlatformAssetID: "i2", Source: testutil.Str("https://fb.test/i2.png"), Blip2ImageDesc: testutil.Str("done")},
		&ads.VideoAsset{AdID: chain.Ad.ID, PlatformAssetID: "v1", Source: testutil.Str("https://fb.test/v1.mp4")},
	}
	for _, row := range rows {
		if err := e.db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := e.mediaService(nil)

	pending, err := svc.PendingDescriptions(e.ctx, b.ID, ads.ChannelFacebook)
	if err != nil || len(pending) != 1 || pending["i1"] != "https://fb.test/i1.png" {
		t.Fatalf("PendingDescriptions: got=%v err=%v", pending, err)
	}
	if n, err := svc.SetImageDescription(e.ctx, "https://fb.test/i1.png", "a dog"); err != nil || n != 1 {
		t.Fatalf("SetImageDescription: n=%d err=%v", n, err)
	}
	if _, err := svc.SetImageDescription(e.ctx, "https://fb.test/i1.png", " "); !ads.IsCode(err, ads.CodeValidation) {
		t.Fatalf("empty description: want validation got %v", err)
	}

	audio, err := svc.PendingAudioDetection(e.ctx, b.ID, ads.ChannelFacebook)
	if err != nil || len(audio) != 1 || audio["v1"] == "" {
		t.Fatalf("PendingAudioDetection: got=%v err=%v", audio, err)
	}
	if n, err := svc.SetVideoAudio(e.ctx, "https://fb.test/v1.mp4", true); err != nil || n != 1 {
		t.Fatalf("SetVideoAudio: n=%d err=%v", n, err)
	}
	if audio, _ = svc.PendingAudioDetection(e.ctx, b.ID, ads.ChannelFacebook); len(audio) != 0 {
		t.Fatalf("after SetVideoAudio: got=%v", audio)
	}
	if _, err := svc.PendingDescriptions(e.ctx, 404, ads.ChannelFacebook); !ads.IsCode(err, ads.CodeNotFound) {
		t.Fatalf("unknown brand: want not_found got %v", err)
	}
}
