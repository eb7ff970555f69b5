package pipeline

import (
	"strings"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/upsert"
)

func insightKey(parts ...string) string { return strings.Join(parts, "|") }

func (in InsightRecord) day() string {
	if in.Date.IsZero() {
		return ""
	}
	return in.Date.Format(ads.DateLayout)
}

// insights runs last so every ad and campaign of the batch already exists.
// Insight rows reference their parents by platform id only.
func (p *Pipeline) insights(r *run) error {
	for _, in := range r.batch.DailyInsights {
		if err := r.dbc.Ctx.Err(); err != nil {
			return err
		}
		rec := ads.DailyInsight{PlatformInfoID: r.piID, PlatformAdID: in.PlatformAdID, Date: in.Date.Time, Spend: in.Spend.ptr()}
		res, err := p.engine.UpsertDailyInsight(r.dbc, &rec)
		r.report.record("daily_insight", insightKey(in.PlatformAdID, in.day()), res, err)
	}
	for _, in := range r.batch.CampaignInsights {
		if err := r.dbc.Ctx.Err(); err != nil {
			return err
		}
		rec := ads.CampaignDailyInsight{PlatformInfoID: r.piID, PlatformCampaignID: in.PlatformCampaignID, Date: in.Date.Time, Spend: in.Spend.ptr()}
		res, err := p.engine.UpsertCampaignDailyInsight(r.dbc, &rec)
		r.report.record("campaign_insight", insightKey(in.PlatformCampaignID, in.day()), res, err)
	}
	for _, in := range r.batch.NetworkInsights {
		if err := r.dbc.Ctx.Err(); err != nil {
			return err
		}
		rec := ads.NetworkInsight{PlatformInfoID: r.piID, PlatformAdID: in.PlatformAdID, Network: in.Network, Date: in.Date.Time, Spend: in.Spend.ptr()}
		res, err := p.engine.UpsertNetworkInsight(r.dbc, &rec)
		r.report.record("network_insight", insightKey(in.PlatformAdID, in.Network, in.day()), res, err)
	}

	breakdowns := []struct {
		kind ads.AssetKind
		rows []InsightRecord
	}{
		{ads.AssetImage, r.batch.ImageAssetInsights},
		{ads.AssetVideo, r.batch.VideoAssetInsights},
		{ads.AssetText, r.batch.TextAssetInsights},
	}
	for _, b := range breakdowns {
		for _, in := range b.rows {
			if err := r.dbc.Ctx.Err(); err != nil {
				return err
			}
			res, err := p.engine.UpsertAssetInsight(r.dbc, b.kind, upsert.AssetInsight{
				PlatformInfoID:  r.piID,
				PlatformAdID:    in.PlatformAdID,
				PlatformAssetID: in.PlatformAssetID,
				Date:            in.Date.Time,
				Spend:           in.Spend.ptr(),
				TextType:        in.TextType,
			})
			r.report.record(string(b.kind)+"_asset_insight", insightKey(in.PlatformAdID, in.PlatformAssetID, in.day()), res, err)
		}
	}
	return nil
}
