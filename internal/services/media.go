package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/upsert"
	"github.com/ganesh-omneky/data-health-dashboard/internal/jobs/runner"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

const downloadTries = 3

type MigrationOutcome struct {
	AssetID string `json:"asset_id"`
	Source  string `json:"source"`
	Target  string `json:"target,omitempty"`
	Rows    int64  `json:"rows"`
	Error   string `json:"error,omitempty"`
}

type MigrationReport struct {
	BrandID  uint               `json:"brand_id"`
	Channel  ads.Channel        `json:"channel"`
	Kind     ads.AssetKind      `json:"kind"`
	Migrated int                `json:"migrated"`
	Failed   int                `json:"failed"`
	Outcomes []MigrationOutcome `json:"outcomes"`
}

type FaceOutcome struct {
	ImageID uint   `json:"image_id"`
	Source  string `json:"source"`
	Faces   int    `json:"faces"`
	Error   string `json:"error,omitempty"`
}

type MediaService interface {
	// UnprocessedSources maps asset id to source for the brand's assets not yet
	// under managed storage.
	UnprocessedSources(ctx context.Context, brandID uint, channel ads.Channel, kind ads.AssetKind) (map[string]string, error)
	// Migrate copies every unprocessed source into the media bucket and
	// repoints the asset rows at the copy.
	Migrate(ctx context.Context, brandID uint, channel ads.Channel, kind ads.AssetKind) (*MigrationReport, error)
	// CountFaces fills no_of_faces for migrated images that lack it.
	CountFaces(ctx context.Context, brandID uint, channel ads.Channel) ([]FaceOutcome, error)
	SetVideoFaces(ctx context.Context, source string, faces int) (int64, error)
	// PendingDescriptions maps asset id to source for images without a
	// generated description.
	PendingDescriptions(ctx context.Context, brandID uint, channel ads.Channel) (map[string]string, error)
	SetImageDescription(ctx context.Context, source, description string) (int64, error)
	// PendingAudioDetection maps asset id to source for videos whose audio
	// presence is unknown.
	PendingAudioDetection(ctx context.Context, brandID uint, channel ads.Channel) (map[string]string, error)
	SetVideoAudio(ctx context.Context, source string, present bool) (int64, error)
}

type mediaService struct {
	platformInfo repos.PlatformInfoRepo
	assets       repos.AssetRepo
	engine       *upsert.Engine
	blobs        gcp.BlobStore
	faces        gcp.FaceCounter
	runner       *runner.Runner
	http         *http.Client
	metrics      *observability.Metrics
	log          *logger.Logger
}

func NewMediaService(
	log *logger.Logger,
	platformInfo repos.PlatformInfoRepo,
	assetRepo repos.AssetRepo,
	engine *upsert.Engine,
	blobs gcp.BlobStore,
	faces gcp.FaceCounter,
	r *runner.Runner,
	metrics *observability.Metrics,
) MediaService {
	return &mediaService{
		platformInfo: platformInfo,
		assets:       assetRepo,
		engine:       engine,
		blobs:        blobs,
		faces:        faces,
		runner:       r.Named("media_migrate"),
		http:         &http.Client{Timeout: 2 * time.Minute, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		metrics:      metrics,
		log:          log.With("service", "MediaService"),
	}
}

func (s *mediaService) account(ctx context.Context, op string, brandID uint, channel ads.Channel) (*ads.PlatformInfo, error) {
	if !channel.Valid() || channel == ads.ChannelOmnichannel {
		return nil, ads.NewError(ads.CodeUnknownChannel, op, "unsupported channel "+channel.String(), ads.ErrUnknownChannel)
	}
	pi, err := s.platformInfo.GetForBrand(dbctx.Context{Ctx: ctx}, brandID, channel)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, op, err)
	}
	if pi == nil {
		return nil, ads.NewError(ads.CodeNotFound, op, fmt.Sprintf("brand %d has no %s account", brandID, channel), ads.ErrNotFound)
	}
	return pi, nil
}

func (s *mediaService) UnprocessedSources(ctx context.Context, brandID uint, channel ads.Channel, kind ads.AssetKind) (map[string]string, error) {
	pi, err := s.account(ctx, "media.UnprocessedSources", brandID, channel)
	if err != nil {
		return nil, err
	}
	return s.assets.UnprocessedSources(dbctx.Context{Ctx: ctx}, pi.ID, kind, s.engine.ManagedPrefix())
}

// MediaKey is where an asset's managed copy lives in the media bucket. The
// source file extension is kept so the stored object gets a content type.
func MediaKey(brandID uint, channel ads.Channel, kind ads.AssetKind, assetID, source string) string {
	key := fmt.Sprintf("%d/%s/%s/%s", brandID, channel.PlatformName(), kind, url.PathEscape(assetID))
	if u, err := url.Parse(source); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 5 {
			key += ext
		}
	}
	return key
}

// ManagedURL is the public address of a media key under the managed prefix
// the upsert engine guards, which may be an override of the bucket URL.
func ManagedURL(prefix, key string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix + strings.TrimLeft(key, "/")
	}
	return prefix + "/" + strings.TrimLeft(key, "/")
}

func (s *mediaService) Migrate(ctx context.Context, brandID uint, channel ads.Channel, kind ads.AssetKind) (*MigrationReport, error) {
	pi, err := s.account(ctx, "media.Migrate", brandID, channel)
	if err != nil {
		return nil, err
	}
	if s.engine.ManagedPrefix() == "" {
		return nil, ads.NewError(ads.CodeConfig, "media.Migrate", "managed storage prefix not configured", ads.ErrMissingConfig)
	}
	sources, err := s.assets.UnprocessedSources(dbctx.Context{Ctx: ctx}, pi.ID, kind, s.engine.ManagedPrefix())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	units := make([]runner.Unit[MigrationOutcome], len(ids))
	for i, id := range ids {
		src := sources[id]
		units[i] = runner.Unit[MigrationOutcome]{
			Name: string(kind) + ":" + id,
			Run: func(ctx context.Context) (MigrationOutcome, error) {
				return s.migrateOne(ctx, pi, kind, id, src)
			},
		}
	}
	report := &MigrationReport{BrandID: brandID, Channel: channel, Kind: kind, Outcomes: make([]MigrationOutcome, 0, len(ids))}
	for i, res := range runner.Run(ctx, s.runner, units) {
		out := res.Value
		out.AssetID, out.Source = ids[i], sources[ids[i]]
		if res.Err != nil {
			out.Error = res.Err.Error()
			report.Failed++
			s.metrics.IncMigrated(string(kind), "failed")
		} else {
			report.Migrated++
			s.metrics.IncMigrated(string(kind), "migrated")
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	s.log.Info("Media migration finished", "brand_id", brandID, "channel", channel.String(), "kind", kind, "migrated", report.Migrated, "failed", report.Failed)
	return report, nil
}

func (s *mediaService) migrateOne(ctx context.Context, pi *ads.PlatformInfo, kind ads.AssetKind, assetID, source string) (MigrationOutcome, error) {
	out := MigrationOutcome{AssetID: assetID, Source: source}
	key := MediaKey(pi.BrandID, pi.Channel(), kind, assetID, source)

	body, err := s.download(ctx, source)
	if err != nil {
		return out, err
	}
	defer body.Close()
	if err := s.blobs.Upload(ctx, gcp.BucketMedia, key, body); err != nil {
		return out, ads.Wrap(ads.CodeUpstream, "media.upload", err)
	}
	out.Target = ManagedURL(s.engine.ManagedPrefix(), key)
	rows, err := s.engine.UpdateSource(dbctx.Context{Ctx: ctx}, kind, pi.ID, assetID, out.Target)
	out.Rows = rows
	return out, err
}

// download retries network errors and 5xx responses.
func (s *mediaService) download(ctx context.Context, source string) (io.ReadCloser, error) {
	get := func() (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := s.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.Body, nil
		}
		resp.Body.Close()
		err = fmt.Errorf("download %s: status %d", source, resp.StatusCode)
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	body, err := backoff.Retry(ctx, get, backoff.WithBackOff(b), backoff.WithMaxTries(downloadTries))
	if err != nil {
		return nil, ads.Wrap(ads.CodeUpstream, "media.download", err)
	}
	return body, nil
}

func (s *mediaService) CountFaces(ctx context.Context, brandID uint, channel ads.Channel) ([]FaceOutcome, error) {
	if s.faces == nil {
		return nil, ads.NewError(ads.CodeConfig, "media.CountFaces", "face detection not configured", ads.ErrMissingConfig)
	}
	pi, err := s.account(ctx, "media.CountFaces", brandID, channel)
	if err != nil {
		return nil, err
	}
	images, err := s.assets.ImagesMissingFaces(dbctx.Context{Ctx: ctx}, pi.ID, s.engine.ManagedPrefix())
	if err != nil {
		return nil, err
	}
	units := make([]runner.Unit[int], len(images))
	for i, img := range images {
		units[i] = runner.Unit[int]{
			Name: fmt.Sprintf("image:%d", img.ID),
			Run: func(ctx context.Context) (int, error) {
				n, err := s.faces.CountFaces(ctx, *img.Source)
				if err != nil {
					return 0, err
				}
				return n, s.assets.SetImageFaces(dbctx.Context{Ctx: ctx}, img.ID, n)
			},
		}
	}
	results := runner.Run(ctx, s.runner.Named("count_faces"), units)
	out := make([]FaceOutcome, len(images))
	for i, res := range results {
		out[i] = FaceOutcome{ImageID: images[i].ID, Source: *images[i].Source, Faces: res.Value}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return out, nil
}

func (s *mediaService) SetVideoFaces(ctx context.Context, source string, faces int) (int64, error) {
	if strings.TrimSpace(source) == "" || faces < 0 {
		return 0, ads.NewError(ads.CodeValidation, "media.SetVideoFaces", "source and a non-negative face count are required", nil)
	}
	return s.assets.SetVideoFacesBySource(dbctx.Context{Ctx: ctx}, source, faces)
}

func (s *mediaService) PendingDescriptions(ctx context.Context, brandID uint, channel ads.Channel) (map[string]string, error) {
	pi, err := s.account(ctx, "media.PendingDescriptions", brandID, channel)
	if err != nil {
		return nil, err
	}
	return s.assets.ImagesMissingDescription(dbctx.Context{Ctx: ctx}, pi.ID)
}

func (s *mediaService) SetImageDescription(ctx context.Context, source, description string) (int64, error) {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(description) == "" {
		return 0, ads.NewError(ads.CodeValidation, "media.SetImageDescription", "source and description are required", nil)
	}
	return s.assets.SetImageDescriptionBySource(dbctx.Context{Ctx: ctx}, source, description)
}

func (s *mediaService) PendingAudioDetection(ctx context.Context, brandID uint, channel ads.Channel) (map[string]string, error) {
	pi, err := s.account(ctx, "media.PendingAudioDetection", brandID, channel)
	if err != nil {
		return nil, err
	}
	return s.assets.VideosMissingAudio(dbctx.Context{Ctx: ctx}, pi.ID)
}

func (s *mediaService) SetVideoAudio(ctx context.Context, source string, present bool) (int64, error) {
	if strings.TrimSpace(source) == "" {
		return 0, ads.NewError(ads.CodeValidation, "media.SetVideoAudio", "source is required", nil)
	}
	return s.assets.SetVideoAudioBySource(dbctx.Context{Ctx: ctx}, source, present)
}
