// Package pipeline feeds one account's fetched batch through the upsert engine
// in parent-before-child order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/upsert"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type Counts struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

type Failure struct {
	Kind  string        `json:"kind"`
	Key   string        `json:"key"`
	Code  ads.ErrorCode `json:"code"`
	Error string        `json:"error"`
}

type Report struct {
	RunID          string             `json:"run_id"`
	AccountID      string             `json:"account_id"`
	Channel        ads.Channel        `json:"channel"`
	PlatformInfoID uint               `json:"platform_info_id"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
	Counts         map[string]*Counts `json:"counts"`
	Failures       []Failure          `json:"failures,omitempty"`
}

func (r *Report) count(kind string) *Counts {
	c, ok := r.Counts[kind]
	if !ok {
		c = &Counts{}
		r.Counts[kind] = c
	}
	return c
}

func (r *Report) record(kind, key string, res upsert.Result, err error) bool {
	c := r.count(kind)
	if err != nil {
		c.Failed++
		r.Failures = append(r.Failures, Failure{Kind: kind, Key: key, Code: ads.CodeOf(err), Error: err.Error()})
		return false
	}
	switch res.Action {
	case upsert.ActionInserted:
		c.Inserted++
	case upsert.ActionUpdated:
		c.Updated++
	default:
		c.Unchanged++
	}
	return true
}

func (r *Report) Failed() int { return len(r.Failures) }

type Pipeline struct {
	engine   *upsert.Engine
	accounts repos.PlatformInfoRepo
	lookup   repos.LookupRepo
	log      *logger.Logger
}

func New(engine *upsert.Engine, accounts repos.PlatformInfoRepo, lookup repos.LookupRepo, baseLog *logger.Logger) *Pipeline {
	return &Pipeline{
		engine:   engine,
		accounts: accounts,
		lookup:   lookup,
		log:      baseLog.With("service", "IngestPipeline"),
	}
}

// run is the state of one Process call: external id -> internal id for rows
// written or resolved so far, and external ids whose upsert failed.
type run struct {
	dbc    dbctx.Context
	batch  *Batch
	piID   uint
	report *Report
	ids    map[string]map[string]uint
	failed map[string]map[string]bool
}

func (r *run) remember(kind, externalID string, id uint) {
	if r.ids[kind] == nil {
		r.ids[kind] = map[string]uint{}
	}
	r.ids[kind][externalID] = id
}

func (r *run) markFailed(kind, externalID string) {
	if r.failed[kind] == nil {
		r.failed[kind] = map[string]bool{}
	}
	r.failed[kind][externalID] = true
}

// Process writes the batch. Only an unknown account or a cancelled context
// fails the whole batch; every other problem is a per-record Failure.
func (p *Pipeline) Process(ctx context.Context, b *Batch) (*Report, error) {
	if b == nil {
		return nil, ads.NewError(ads.CodeValidation, "pipeline.Process", "nil batch", nil)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := otel.Tracer("pipeline").Start(ctx, "pipeline.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("account_id", b.AccountID),
		attribute.String("channel", b.Channel.String()),
		attribute.Int("records", b.Size()),
	)

	report := &Report{
		RunID:     uuid.NewString(),
		AccountID: b.AccountID,
		Channel:   b.Channel,
		StartedAt: time.Now().UTC(),
		Counts:    map[string]*Counts{},
	}
	log := p.log.With("run_id", report.RunID, "account_id", b.AccountID, "channel", b.Channel.String())

	dbc := dbctx.Context{Ctx: ctx}
	pi, err := p.accounts.GetByAccount(dbc, b.AccountID, b.Channel)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "pipeline.Process", err)
	}
	if pi == nil {
		return nil, ads.NewError(ads.CodeNotFound, "pipeline.Process",
			fmt.Sprintf("no platform_info for %s account %s", b.Channel, b.AccountID), ads.ErrNotFound)
	}
	report.PlatformInfoID = pi.ID

	r := &run{
		dbc:    dbc,
		batch:  b,
		piID:   pi.ID,
		report: report,
		ids:    map[string]map[string]uint{},
		failed: map[string]map[string]bool{},
	}
	for _, step := range []func(*run) error{p.campaigns, p.adGroups, p.ads, p.insights} {
		if err := step(r); err != nil {
			report.FinishedAt = time.Now().UTC()
			log.Warn("batch aborted", "error", err, "failures", report.Failed())
			return report, err
		}
	}

	report.FinishedAt = time.Now().UTC()
	log.Info("batch processed",
		"records", b.Size(),
		"failures", report.Failed(),
		"elapsed", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report, nil
}

// parentID resolves a parent's internal id from this run, then the store.
func parentID(r *run, kind, externalID string, lookup func(dbctx.Context, uint, string) (uint, error)) (uint, error) {
	op := "pipeline." + kind
	if externalID == "" {
		return 0, ads.NewError(ads.CodeMissingParent, op, kind+" id not supplied", ads.ErrMissingParent)
	}
	if r.failed[kind][externalID] {
		return 0, ads.NewError(ads.CodeMissingParent, op, kind+" "+externalID+" failed in this run", ads.ErrMissingParent)
	}
	if id, ok := r.ids[kind][externalID]; ok {
		return id, nil
	}
	id, err := lookup(r.dbc, r.piID, externalID)
	if err != nil {
		return 0, ads.Wrap(ads.CodeInternal, op, err)
	}
	if id == 0 {
		return 0, ads.NewError(ads.CodeMissingParent, op, kind+" "+externalID+" not found", ads.ErrMissingParent)
	}
	r.remember(kind, externalID, id)
	return id, nil
}

func (p *Pipeline) campaigns(r *run) error {
	for _, rec := range r.batch.Campaigns {
		if err := r.dbc.Ctx.Err(); err != nil {
			return err
		}
		rec.ID = 0
		rec.PlatformInfoID = r.piID
		res, err := p.engine.UpsertCampaign(r.dbc, &rec)
		if r.report.record("campaign", rec.PlatformCampaignID, res, err) {
			r.remember("campaign", rec.PlatformCampaignID, res.ID)
		} else {
			r.markFailed("campaign", rec.PlatformCampaignID)
		}
	}
	return nil
}

func (p *Pipeline) adGroups(r *run) error {
	for _, in := range r.batch.AdGroups {
		if err := r.dbc.Ctx.Err(); err != nil {
			return err
		}
		rec := in.AdGroup
		rec.ID = 0
		rec.PlatformInfoID = r.piID
		campaignID, err := parentID(r, "campaign", in.PlatformCampaignID, p.lookup.CampaignID)
		var res upsert.Result
		if err == nil {
			rec.CampaignID = campaignID
			res, err = p.engine.UpsertAdGroup(r.dbc, &rec)
		}
		if r.report.record("ad_group", rec.PlatformAdGroupID, res, err) {
			r.remember("ad_group", rec.PlatformAdGroupID, res.ID)
		} else {
			r.markFailed("ad_group", rec.PlatformAdGroupID)
		}
	}
	return nil
}

// ads writes, per ad, its creative, the ad row, then the ad's assets.
func (p *Pipeline) ads(r *run) error {
	for i := range r.batch.Ads {
		if err := r.dbc.Ctx.Err(); err != nil {
			return err
		}
		p.ad(r, &r.batch.Ads[i])
	}
	return nil
}

func (p *Pipeline) ad(r *run, in *AdRecord) {
	rec := in.Ad
	rec.ID = 0
	rec.PlatformInfoID = r.piID

	creativeID, err := p.creative(r, in)
	if err == nil {
		var groupID uint
		groupID, err = parentID(r, "ad_group", in.PlatformAdGroupID, p.lookup.AdGroupID)
		rec.AdGroupID = groupID
	}
	var res upsert.Result
	if err == nil {
		rec.AdCreativeID = creativeID
		res, err = p.engine.UpsertAd(r.dbc, &rec)
	}
	if !r.report.record("ad", rec.PlatformAdID, res, err) {
		r.markFailed("ad", rec.PlatformAdID)
		p.failAssets(r, in, err)
		return
	}
	r.remember("ad", rec.PlatformAdID, res.ID)

	for _, img := range in.Images {
		img.ID = 0
		img.AdID = res.ID
		ir, err := p.engine.UpsertImageAsset(r.dbc, &img)
		r.report.record("image", img.PlatformAssetID, ir, err)
	}
	for _, vid := range in.Videos {
		vid.ID = 0
		vid.AdID = res.ID
		vr, err := p.engine.UpsertVideoAsset(r.dbc, &vid)
		r.report.record("video", vid.PlatformAssetID, vr, err)
	}
	for _, txt := range in.Texts {
		txt.ID = 0
		txt.AdID = res.ID
		txt.PlatformAdID = rec.PlatformAdID
		tr, err := p.engine.UpsertTextAsset(r.dbc, &txt)
		r.report.record("text", txt.PlatformAssetID, tr, err)
	}
}

// creative upserts the embedded creative, or resolves the referenced one.
func (p *Pipeline) creative(r *run, in *AdRecord) (uint, error) {
	if in.Creative == nil {
		return parentID(r, "ad_creative", in.PlatformAdCreativeID, p.lookup.AdCreativeID)
	}
	c := *in.Creative
	c.ID = 0
	c.PlatformInfoID = r.piID
	res, err := p.engine.UpsertAdCreative(r.dbc, &c)
	if !r.report.record("ad_creative", c.PlatformAdCreativeID, res, err) {
		return 0, ads.NewError(ads.CodeMissingParent, "pipeline.ad", "creative of ad "+in.PlatformAdID+" failed", errors.Join(ads.ErrMissingParent, err))
	}
	r.remember("ad_creative", c.PlatformAdCreativeID, res.ID)
	return res.ID, nil
}

func (p *Pipeline) failAssets(r *run, in *AdRecord, cause error) {
	err := ads.NewError(ads.CodeMissingParent, "pipeline.asset", "ad "+in.PlatformAdID+" not written", errors.Join(ads.ErrMissingParent, cause))
	for _, img := range in.Images {
		r.report.record("image", img.PlatformAssetID, upsert.Result{}, err)
	}
	for _, vid := range in.Videos {
		r.report.record("video", vid.PlatformAssetID, upsert.Result{}, err)
	}
	for _, txt := range in.Texts {
		r.report.record("text", txt.Type+":"+txt.Text, upsert.Result{}, err)
	}
}
