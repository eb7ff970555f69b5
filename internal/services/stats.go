package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/insights"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

const (
	DefaultStatsTTL = 60 * time.Minute
	ReportKey       = "insights_stats.html"
	// NullDate marks a table with no rows for the pair.
	NullDate = "NULL"

	snapshotKey      = "insight_stats:v1"
	statsLoadTimeout = 2 * time.Minute
)

type InsightStatsRow struct {
	BrandID            uint   `json:"brand_id"`
	BrandName          string `json:"brand_name"`
	PlatformID         uint   `json:"platform_id"`
	Platform           string `json:"platform"`
	DailyInsights      string `json:"daily_insights"`
	ImageAssetInsights string `json:"image_asset_insights"`
	VideoAssetInsights string `json:"video_asset_insights"`
	TextAssetInsights  string `json:"text_asset_insights"`
}

func (r *InsightStatsRow) set(t insights.Table, v string) {
	switch t {
	case insights.TableDaily:
		r.DailyInsights = v
	case insights.TableImageAsset:
		r.ImageAssetInsights = v
	case insights.TableVideoAsset:
		r.VideoAssetInsights = v
	case insights.TableTextAsset:
		r.TextAssetInsights = v
	}
}

// InsightStats is a shared read-only snapshot; callers must not modify it.
type InsightStats struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Rows        []InsightStatsRow `json:"rows"`
}

// SnapshotStore shares one stats snapshot between dashboard processes.
type SnapshotStore interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

type StatsService interface {
	// InsightStats is memoised for the configured window; writes elsewhere do
	// not invalidate it early.
	InsightStats(ctx context.Context) (*InsightStats, error)
	// PublishReport renders the current snapshot to the report bucket and
	// returns its public URL.
	PublishReport(ctx context.Context) (string, error)
	// Report reads the last published HTML report.
	Report(ctx context.Context) ([]byte, error)
}

type StatsConfig struct {
	TTL    time.Duration
	Shared SnapshotStore
	Now    func() time.Time
}

type memo struct {
	stats   *InsightStats
	expires time.Time
}

type statsService struct {
	platformInfo repos.PlatformInfoRepo
	insights     repos.InsightRepo
	blobs        gcp.BlobStore
	shared       SnapshotStore
	ttl          time.Duration
	now          func() time.Time
	metrics      *observability.Metrics
	log          *logger.Logger

	current atomic.Pointer[memo]
	group   singleflight.Group
}

func NewStatsService(
	log *logger.Logger,
	platformInfo repos.PlatformInfoRepo,
	insightRepo repos.InsightRepo,
	blobs gcp.BlobStore,
	metrics *observability.Metrics,
	cfg StatsConfig,
) StatsService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultStatsTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &statsService{
		platformInfo: platformInfo,
		insights:     insightRepo,
		blobs:        blobs,
		shared:       cfg.Shared,
		ttl:          cfg.TTL,
		now:          cfg.Now,
		metrics:      metrics,
		log:          log.With("service", "StatsService"),
	}
}

func (s *statsService) InsightStats(ctx context.Context) (*InsightStats, error) {
	if m := s.current.Load(); m != nil && s.now().Before(m.expires) {
		return m.stats, nil
	}
	// the load runs detached from the caller that started it
	ch := s.group.DoChan(snapshotKey, func() (any, error) {
		// another caller may have refreshed while this one waited
		if m := s.current.Load(); m != nil && s.now().Before(m.expires) {
			return m.stats, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsLoadTimeout)
		defer cancel()
		stats, err := s.load(lctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(&memo{stats: stats, expires: stats.GeneratedAt.Add(s.ttl)})
		return stats, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*InsightStats), nil
	}
}

// load prefers a snapshot another process published inside the window.
func (s *statsService) load(ctx context.Context) (*InsightStats, error) {
	if s.shared != nil {
		var snap InsightStats
		ok, err := s.shared.Get(ctx, snapshotKey, &snap)
		switch {
		case err != nil:
			s.log.Warn("shared stats snapshot unavailable, recomputing", "error", err)
		case ok && s.now().Before(snap.GeneratedAt.Add(s.ttl)):
			return &snap, nil
		}
	}
	stats, err := s.aggregate(ctx)
	if err != nil {
		return nil, err
	}
	if s.shared != nil {
		if err := s.shared.Set(ctx, snapshotKey, stats, s.ttl); err != nil {
			s.log.Warn("failed to share stats snapshot", "error", err)
		}
	}
	return stats, nil
}

func (s *statsService) aggregate(ctx context.Context) (stats *InsightStats, err error) {
	ctx, span := observability.StartSpan(ctx, "stats.aggregate")
	defer func() { observability.EndSpan(span, err) }()
	start := s.now()
	dbc := dbctx.Context{Ctx: ctx}

	assocs, err := s.platformInfo.ListActiveAssociations(dbc)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "stats.aggregate", err)
	}
	latest := make(map[insights.Table]map[insights.BrandPlatform]time.Time, len(insights.StatsTables))
	for _, t := range insights.StatsTables {
		m, err := s.insights.LatestDatesByBrandPlatform(dbc, t)
		if err != nil {
			return nil, ads.Wrap(ads.CodeInternal, "stats.aggregate", err)
		}
		latest[t] = m
	}

	// associations arrive ordered by (brand, platform); several accounts on
	// one pair collapse into a single row
	rows := make([]InsightStatsRow, 0, len(assocs))
	seen := map[insights.BrandPlatform]bool{}
	for _, a := range assocs {
		key := insights.BrandPlatform{BrandID: a.BrandID, PlatformID: a.PlatformID}
		if seen[key] {
			continue
		}
		seen[key] = true
		row := InsightStatsRow{
			BrandID:    a.BrandID,
			BrandName:  a.BrandName,
			PlatformID: a.PlatformID,
			Platform:   a.Channel().String(),
		}
		for _, t := range insights.StatsTables {
			v := NullDate
			if d, ok := latest[t][key]; ok {
				v = d.Format(ads.DateLayout)
			}
			row.set(t, v)
		}
		rows = append(rows, row)
	}

	s.metrics.ObserveStatsRebuild(s.now().Sub(start))
	s.log.Info("Insight stats recomputed", "rows", len(rows), "elapsed", s.now().Sub(start).String())
	return &InsightStats{GeneratedAt: s.now().UTC(), Rows: rows}, nil
}

func (s *statsService) PublishReport(ctx context.Context) (string, error) {
	stats, err := s.InsightStats(ctx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := RenderStatsHTML(&buf, stats); err != nil {
		return "", ads.Wrap(ads.CodeInternal, "stats.PublishReport", err)
	}
	if err := s.blobs.Upload(ctx, gcp.BucketReports, ReportKey, &buf); err != nil {
		return "", ads.Wrap(ads.CodeUpstream, "stats.PublishReport", err)
	}
	url := s.blobs.PublicURL(gcp.BucketReports, ReportKey)
	s.log.Info("Published insight stats report", "url", url, "rows", len(stats.Rows))
	return url, nil
}

func (s *statsService) Report(ctx context.Context) ([]byte, error) {
	rc, err := s.blobs.Download(ctx, gcp.BucketReports, ReportKey)
	if errors.Is(err, ads.ErrNotFound) {
		return nil, ads.NewError(ads.CodeNotFound, "stats.Report", "no report published yet", ads.ErrNotFound)
	}
	if err != nil {
		return nil, ads.Wrap(ads.CodeUpstream, "stats.Report", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
