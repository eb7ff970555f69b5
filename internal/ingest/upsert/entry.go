package upsert

import (
	"fmt"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
)

func (e *Engine) UpsertCampaign(dbc dbctx.Context, r *ads.Campaign) (Result, error) {
	return run(dbc, e, campaignSchema, r)
}

func (e *Engine) UpsertAdGroup(dbc dbctx.Context, r *ads.AdGroup) (Result, error) {
	return run(dbc, e, adGroupSchema, r)
}

// UpsertAdCreative derives platform_ad_creative_id from the content when it is
// empty, so the same payload always lands on the same row.
func (e *Engine) UpsertAdCreative(dbc dbctx.Context, r *ads.AdCreative) (Result, error) {
	return run(dbc, e, adCreativeSchema, r)
}

func (e *Engine) UpsertAd(dbc dbctx.Context, r *ads.Ad) (Result, error) {
	return run(dbc, e, adSchema, r)
}

func (e *Engine) UpsertImageAsset(dbc dbctx.Context, r *ads.ImageAsset) (Result, error) {
	return run(dbc, e, imageAssetSchema, r)
}

func (e *Engine) UpsertVideoAsset(dbc dbctx.Context, r *ads.VideoAsset) (Result, error) {
	return run(dbc, e, videoAssetSchema, r)
}

// UpsertTextAsset derives the asset id from PlatformAdID, Text and Type when
// PlatformAssetID is empty.
func (e *Engine) UpsertTextAsset(dbc dbctx.Context, r *ads.TextAsset) (Result, error) {
	return run(dbc, e, textAssetSchema, r)
}

func (e *Engine) UpsertDailyInsight(dbc dbctx.Context, r *ads.DailyInsight) (Result, error) {
	return run(dbc, e, dailyInsightSchema, r)
}

func (e *Engine) UpsertCampaignDailyInsight(dbc dbctx.Context, r *ads.CampaignDailyInsight) (Result, error) {
	return run(dbc, e, campaignDailyInsightSchema, r)
}

func (e *Engine) UpsertNetworkInsight(dbc dbctx.Context, r *ads.NetworkInsight) (Result, error) {
	return run(dbc, e, networkInsightSchema, r)
}

// AssetInsight is the breakdown-independent shape of an asset insight row.
type AssetInsight struct {
	PlatformInfoID  uint      `json:"platform_info_id"`
	PlatformAdID    string    `json:"platform_ad_id"`
	PlatformAssetID string    `json:"platform_asset_id"`
	Date            time.Time `json:"date"`
	Spend           *string   `json:"spend,omitempty"`
	TextType        *string   `json:"text_type,omitempty"`
}

// UpsertAssetInsight routes the row to the insight table of its breakdown.
func (e *Engine) UpsertAssetInsight(dbc dbctx.Context, breakdown ads.AssetKind, in AssetInsight) (Result, error) {
	switch breakdown {
	case ads.AssetImage:
		return run(dbc, e, imageAssetInsightSchema, &ads.ImageAssetInsight{
			PlatformInfoID:  in.PlatformInfoID,
			PlatformAdID:    in.PlatformAdID,
			PlatformAssetID: in.PlatformAssetID,
			Date:            in.Date,
			Spend:           in.Spend,
		})
	case ads.AssetVideo:
		return run(dbc, e, videoAssetInsightSchema, &ads.VideoAssetInsight{
			PlatformInfoID:  in.PlatformInfoID,
			PlatformAdID:    in.PlatformAdID,
			PlatformAssetID: in.PlatformAssetID,
			Date:            in.Date,
			Spend:           in.Spend,
		})
	case ads.AssetText:
		return run(dbc, e, textAssetInsightSchema, &ads.TextAssetInsight{
			PlatformInfoID:  in.PlatformInfoID,
			PlatformAdID:    in.PlatformAdID,
			PlatformAssetID: in.PlatformAssetID,
			Date:            in.Date,
			Spend:           in.Spend,
			TextType:        in.TextType,
		})
	default:
		return Result{}, ads.NewError(ads.CodeValidation, "upsert.asset_insight", fmt.Sprintf("unknown breakdown %q", breakdown), nil)
	}
}

// UpdateSource points an asset of the account at its managed-storage copy. It
// is the only write allowed to replace a managed source, and it returns the
// number of rows touched.
func (e *Engine) UpdateSource(dbc dbctx.Context, kind ads.AssetKind, platformInfoID uint, assetID, uri string) (int64, error) {
	op := "upsert.update_source"
	var model any
	switch kind {
	case ads.AssetImage:
		model = &ads.ImageAsset{}
	case ads.AssetVideo:
		model = &ads.VideoAsset{}
	default:
		return 0, ads.NewError(ads.CodeValidation, op, fmt.Sprintf("asset kind %q has no source", kind), nil)
	}
	if !e.IsManaged(uri) {
		return 0, ads.NewError(ads.CodeValidation, op, "uri is not under managed storage", nil)
	}
	adIDs := dbc.DB(e.db).Model(&ads.Ad{}).Select("id").Where("platform_info_id = ?", platformInfoID)
	res := dbc.DB(e.db).Model(model).
		Where("platform_asset_id = ?", assetID).
		Where("ad_id IN (?)", adIDs).
		Update("source", uri)
	if res.Error != nil {
		return 0, ads.Wrap(ads.CodeInternal, op, res.Error)
	}
	e.log.Info("Updated asset source", "kind", kind, "platform_info_id", platformInfoID, "asset_id", assetID, "rows", res.RowsAffected)
	return res.RowsAffected, nil
}
