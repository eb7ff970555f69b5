package upsert

import (
	"fmt"
	"strings"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/identity"
)

func required(kind string, pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		missing := false
		switch v := pairs[i+1].(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case uint:
			missing = v == 0
		}
		if missing {
			return ads.NewError(ads.CodeValidation, "upsert."+kind, name+" is required", nil)
		}
	}
	return nil
}

var campaignSchema = &Descriptor[ads.Campaign]{
	Kind: "campaign",
	Key: func(r *ads.Campaign) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_campaign_id": r.PlatformCampaignID}
	},
	Columns: []Column[ads.Campaign]{
		{Name: "name", Value: func(r *ads.Campaign) any { return opt(r.Name) }},
		{Name: "objective", Value: func(r *ads.Campaign) any { return opt(r.Objective) }},
		{Name: "status", Value: func(r *ads.Campaign) any { return opt(r.Status) }},
	},
	Derive: func(r *ads.Campaign) error {
		return required("campaign", "platform_info_id", r.PlatformInfoID, "platform_campaign_id", r.PlatformCampaignID)
	},
	Parents: func(r *ads.Campaign) []ParentRef {
		return []ParentRef{{Table: "platform_info", ID: r.PlatformInfoID}}
	},
	ID: func(r *ads.Campaign) uint { return r.ID },
}

var adGroupSchema = &Descriptor[ads.AdGroup]{
	Kind: "ad_group",
	Key: func(r *ads.AdGroup) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_ad_group_id": r.PlatformAdGroupID}
	},
	Columns: []Column[ads.AdGroup]{
		{Name: "campaign_id", Value: func(r *ads.AdGroup) any { return nonZero(r.CampaignID) }},
		{Name: "name", Value: func(r *ads.AdGroup) any { return opt(r.Name) }},
		{Name: "objective", Value: func(r *ads.AdGroup) any { return opt(r.Objective) }},
		{Name: "status", Value: func(r *ads.AdGroup) any { return opt(r.Status) }},
	},
	Derive: func(r *ads.AdGroup) error {
		return required("ad_group", "platform_info_id", r.PlatformInfoID, "platform_ad_group_id", r.PlatformAdGroupID)
	},
	Parents: func(r *ads.AdGroup) []ParentRef {
		return []ParentRef{{Table: "campaigns", ID: r.CampaignID}}
	},
	ID: func(r *ads.AdGroup) uint { return r.ID },
}

var adCreativeSchema = &Descriptor[ads.AdCreative]{
	Kind: "ad_creative",
	Key: func(r *ads.AdCreative) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_ad_creative_id": r.PlatformAdCreativeID}
	},
	Columns: []Column[ads.AdCreative]{
		{Name: "name", Value: func(r *ads.AdCreative) any { return opt(r.Name) }},
		{Name: "cta_type", Value: func(r *ads.AdCreative) any { return opt(r.CTAType) }},
		{Name: "image_hash", Value: func(r *ads.AdCreative) any { return opt(r.ImageHash) }},
		{Name: "image_url", Value: func(r *ads.AdCreative) any { return opt(r.ImageURL) }},
		{Name: "status", Value: func(r *ads.AdCreative) any { return opt(r.Status) }},
		{Name: "thumbnail_url", Value: func(r *ads.AdCreative) any { return opt(r.ThumbnailURL) }},
		{Name: "title", Value: func(r *ads.AdCreative) any { return opt(r.Title) }},
		{Name: "video_id", Value: func(r *ads.AdCreative) any { return opt(r.VideoID) }},
		{Name: "object_type", Value: func(r *ads.AdCreative) any { return opt(r.ObjectType) }},
		{Name: "asset_feed_spec_json", Value: func(r *ads.AdCreative) any { return jsonValue(r.AssetFeedSpecJSON) }, Equal: jsonEqual},
		{Name: "object_story_spec_json", Value: func(r *ads.AdCreative) any { return jsonValue(r.ObjectStorySpecJSON) }, Equal: jsonEqual},
	},
	Derive: deriveCreativeID,
	Parents: func(r *ads.AdCreative) []ParentRef {
		return []ParentRef{{Table: "platform_info", ID: r.PlatformInfoID}}
	},
	ID: func(r *ads.AdCreative) uint { return r.ID },
}

// deriveCreativeID fills platform_ad_creative_id with the content hash of the
// supplied fields when the platform did not provide one.
func deriveCreativeID(r *ads.AdCreative) error {
	if err := required("ad_creative", "platform_info_id", r.PlatformInfoID); err != nil {
		return err
	}
	if strings.TrimSpace(r.PlatformAdCreativeID) != "" {
		return nil
	}
	fields := map[string]any{"platform_info_id": r.PlatformInfoID}
	for name, p := range map[string]*string{
		"name":          r.Name,
		"cta_type":      r.CTAType,
		"image_hash":    r.ImageHash,
		"image_url":     r.ImageURL,
		"status":        r.Status,
		"thumbnail_url": r.ThumbnailURL,
		"title":         r.Title,
		"video_id":      r.VideoID,
		"object_type":   r.ObjectType,
	} {
		if p != nil {
			fields[name] = *p
		} else {
			fields[name] = nil
		}
	}
	for name, raw := range map[string][]byte{
		"asset_feed_spec_json":   r.AssetFeedSpecJSON,
		"object_story_spec_json": r.ObjectStorySpecJSON,
	} {
		if jsonValue(raw) == nil {
			fields[name] = nil
			continue
		}
		decoded, err := identity.DecodeSpec(raw)
		if err != nil {
			return fmt.Errorf("derive creative id: %w", err)
		}
		fields[name] = decoded
	}
	h, err := identity.CreativeContentHash(fields)
	if err != nil {
		return ads.Wrap(ads.CodeValidation, "upsert.ad_creative", err)
	}
	r.PlatformAdCreativeID = h
	return nil
}

var adSchema = &Descriptor[ads.Ad]{
	Kind: "ad",
	Key: func(r *ads.Ad) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_ad_id": r.PlatformAdID}
	},
	Columns: []Column[ads.Ad]{
		{Name: "ad_group_id", Value: func(r *ads.Ad) any { return nonZero(r.AdGroupID) }},
		{Name: "ad_creative_id", Value: func(r *ads.Ad) any { return nonZero(r.AdCreativeID) }},
		{Name: "ad_type", Value: func(r *ads.Ad) any { return opt(r.AdType) }},
		{Name: "landing_page_url", Value: func(r *ads.Ad) any { return opt(r.LandingPageURL) }},
		{Name: "status", Value: func(r *ads.Ad) any { return opt(r.Status) }},
		{Name: "cta", Value: func(r *ads.Ad) any { return opt(r.CTA) }},
	},
	Derive: func(r *ads.Ad) error {
		return required("ad", "platform_info_id", r.PlatformInfoID, "platform_ad_id", r.PlatformAdID)
	},
	Parents: func(r *ads.Ad) []ParentRef {
		return []ParentRef{
			{Table: "ad_groups", ID: r.AdGroupID},
			{Table: "ad_creatives", ID: r.AdCreativeID},
		}
	},
	ID: func(r *ads.Ad) uint { return r.ID },
}

var imageAssetSchema = &Descriptor[ads.ImageAsset]{
	Kind: "image",
	Key: func(r *ads.ImageAsset) map[string]any {
		return map[string]any{"ad_id": r.AdID, "platform_asset_id": r.PlatformAssetID}
	},
	Columns: []Column[ads.ImageAsset]{
		{Name: "source", Value: func(r *ads.ImageAsset) any { return opt(r.Source) }, Policy: NoOverwriteOnceMigrated},
		{Name: "height", Value: func(r *ads.ImageAsset) any { return opt(r.Height) }},
		{Name: "width", Value: func(r *ads.ImageAsset) any { return opt(r.Width) }},
		{Name: "no_of_faces", Value: func(r *ads.ImageAsset) any { return opt(r.NoOfFaces) }},
		{Name: "clip_image_desc", Value: func(r *ads.ImageAsset) any { return opt(r.ClipImageDesc) }},
		{Name: "blip2_image_desc", Value: func(r *ads.ImageAsset) any { return opt(r.Blip2ImageDesc) }},
	},
	Derive: func(r *ads.ImageAsset) error {
		return required("image", "ad_id", r.AdID, "platform_asset_id", r.PlatformAssetID)
	},
	Parents: func(r *ads.ImageAsset) []ParentRef { return []ParentRef{{Table: "ads", ID: r.AdID}} },
	ID:      func(r *ads.ImageAsset) uint { return r.ID },
}

var videoAssetSchema = &Descriptor[ads.VideoAsset]{
	Kind: "video",
	Key: func(r *ads.VideoAsset) map[string]any {
		return map[string]any{"ad_id": r.AdID, "platform_asset_id": r.PlatformAssetID}
	},
	Columns: []Column[ads.VideoAsset]{
		{Name: "source", Value: func(r *ads.VideoAsset) any { return opt(r.Source) }, Policy: NoOverwriteOnceMigrated},
		{Name: "duration", Value: func(r *ads.VideoAsset) any { return opt(r.Duration) }},
		{Name: "no_of_faces", Value: func(r *ads.VideoAsset) any { return opt(r.NoOfFaces) }},
		{Name: "is_audio_present", Value: func(r *ads.VideoAsset) any { return opt(r.IsAudioPresent) }},
		{Name: "height", Value: func(r *ads.VideoAsset) any { return opt(r.Height) }},
		{Name: "width", Value: func(r *ads.VideoAsset) any { return opt(r.Width) }},
	},
	Derive: func(r *ads.VideoAsset) error {
		return required("video", "ad_id", r.AdID, "platform_asset_id", r.PlatformAssetID)
	},
	Parents: func(r *ads.VideoAsset) []ParentRef { return []ParentRef{{Table: "ads", ID: r.AdID}} },
	ID:      func(r *ads.VideoAsset) uint { return r.ID },
}

var textAssetSchema = &Descriptor[ads.TextAsset]{
	Kind: "text",
	Key: func(r *ads.TextAsset) map[string]any {
		return map[string]any{"ad_id": r.AdID, "platform_asset_id": r.PlatformAssetID}
	},
	Columns: []Column[ads.TextAsset]{
		{Name: "type", Value: func(r *ads.TextAsset) any { return r.Type }},
		{Name: "text", Value: func(r *ads.TextAsset) any { return r.Text }},
		{Name: "sentiment", Value: func(r *ads.TextAsset) any { return opt(r.Sentiment) }},
	},
	Derive: func(r *ads.TextAsset) error {
		if err := required("text", "ad_id", r.AdID, "text", r.Text); err != nil {
			return err
		}
		if r.PlatformAssetID == "" {
			if r.PlatformAdID == "" {
				return ads.NewError(ads.CodeValidation, "upsert.text", "platform_ad_id is required to derive the asset id", nil)
			}
			r.PlatformAssetID = identity.TextAssetID(r.PlatformAdID, r.Text, r.Type)
		}
		return nil
	},
	Parents: func(r *ads.TextAsset) []ParentRef { return []ParentRef{{Table: "ads", ID: r.AdID}} },
	ID:      func(r *ads.TextAsset) uint { return r.ID },
}

var dailyInsightSchema = &Descriptor[ads.DailyInsight]{
	Kind: "daily_insight",
	Key: func(r *ads.DailyInsight) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_ad_id": r.PlatformAdID, "date": r.Date}
	},
	Columns: []Column[ads.DailyInsight]{
		{Name: "spend", Value: func(r *ads.DailyInsight) any { return opt(r.Spend) }},
	},
	Derive: func(r *ads.DailyInsight) error {
		if err := insightDate("daily_insight", &r.Date); err != nil {
			return err
		}
		return required("daily_insight", "platform_info_id", r.PlatformInfoID, "platform_ad_id", r.PlatformAdID)
	},
	ID:         func(r *ads.DailyInsight) uint { return r.ID },
	WriteTries: InsightWriteTries,
}

var campaignDailyInsightSchema = &Descriptor[ads.CampaignDailyInsight]{
	Kind: "campaign_daily_insight",
	Key: func(r *ads.CampaignDailyInsight) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_campaign_id": r.PlatformCampaignID, "date": r.Date}
	},
	Columns: []Column[ads.CampaignDailyInsight]{
		{Name: "spend", Value: func(r *ads.CampaignDailyInsight) any { return opt(r.Spend) }},
	},
	Derive: func(r *ads.CampaignDailyInsight) error {
		if err := insightDate("campaign_daily_insight", &r.Date); err != nil {
			return err
		}
		return required("campaign_daily_insight", "platform_info_id", r.PlatformInfoID, "platform_campaign_id", r.PlatformCampaignID)
	},
	ID:         func(r *ads.CampaignDailyInsight) uint { return r.ID },
	WriteTries: InsightWriteTries,
}

var networkInsightSchema = &Descriptor[ads.NetworkInsight]{
	Kind: "network_insight",
	Key: func(r *ads.NetworkInsight) map[string]any {
		return map[string]any{"platform_info_id": r.PlatformInfoID, "platform_ad_id": r.PlatformAdID, "network": r.Network, "date": r.Date}
	},
	Columns: []Column[ads.NetworkInsight]{
		{Name: "spend", Value: func(r *ads.NetworkInsight) any { return opt(r.Spend) }},
	},
	Derive: func(r *ads.NetworkInsight) error {
		if err := insightDate("network_insight", &r.Date); err != nil {
			return err
		}
		return required("network_insight", "platform_info_id", r.PlatformInfoID, "platform_ad_id", r.PlatformAdID, "network", r.Network)
	},
	ID:         func(r *ads.NetworkInsight) uint { return r.ID },
	WriteTries: InsightWriteTries,
}

var imageAssetInsightSchema = &Descriptor[ads.ImageAssetInsight]{
	Kind: "image_asset_insight",
	Key: func(r *ads.ImageAssetInsight) map[string]any {
		return assetInsightKey(r.PlatformInfoID, r.PlatformAdID, r.PlatformAssetID, r.Date)
	},
	Columns: []Column[ads.ImageAssetInsight]{
		{Name: "spend", Value: func(r *ads.ImageAssetInsight) any { return opt(r.Spend) }},
	},
	Derive: func(r *ads.ImageAssetInsight) error {
		return assetInsightDerive("image_asset_insight", r.PlatformInfoID, r.PlatformAdID, r.PlatformAssetID, &r.Date)
	},
	ID:         func(r *ads.ImageAssetInsight) uint { return r.ID },
	WriteTries: InsightWriteTries,
}

var videoAssetInsightSchema = &Descriptor[ads.VideoAssetInsight]{
	Kind: "video_asset_insight",
	Key: func(r *ads.VideoAssetInsight) map[string]any {
		return assetInsightKey(r.PlatformInfoID, r.PlatformAdID, r.PlatformAssetID, r.Date)
	},
	Columns: []Column[ads.VideoAssetInsight]{
		{Name: "spend", Value: func(r *ads.VideoAssetInsight) any { return opt(r.Spend) }},
	},
	Derive: func(r *ads.VideoAssetInsight) error {
		return assetInsightDerive("video_asset_insight", r.PlatformInfoID, r.PlatformAdID, r.PlatformAssetID, &r.Date)
	},
	ID:         func(r *ads.VideoAssetInsight) uint { return r.ID },
	WriteTries: InsightWriteTries,
}

var textAssetInsightSchema = &Descriptor[ads.TextAssetInsight]{
	Kind: "text_asset_insight",
	Key: func(r *ads.TextAssetInsight) map[string]any {
		return assetInsightKey(r.PlatformInfoID, r.PlatformAdID, r.PlatformAssetID, r.Date)
	},
	Columns: []Column[ads.TextAssetInsight]{
		{Name: "spend", Value: func(r *ads.TextAssetInsight) any { return opt(r.Spend) }},
		{Name: "text_type", Value: func(r *ads.TextAssetInsight) any { return opt(r.TextType) }},
	},
	Derive: func(r *ads.TextAssetInsight) error {
		return assetInsightDerive("text_asset_insight", r.PlatformInfoID, r.PlatformAdID, r.PlatformAssetID, &r.Date)
	},
	ID:         func(r *ads.TextAssetInsight) uint { return r.ID },
	WriteTries: InsightWriteTries,
}

func assetInsightKey(platformInfoID uint, adID, assetID string, date any) map[string]any {
	return map[string]any{
		"platform_info_id":  platformInfoID,
		"platform_ad_id":    adID,
		"platform_asset_id": assetID,
		"date":              date,
	}
}

func assetInsightDerive(kind string, platformInfoID uint, adID, assetID string, date *time.Time) error {
	if err := insightDate(kind, date); err != nil {
		return err
	}
	return required(kind, "platform_info_id", platformInfoID, "platform_ad_id", adID, "platform_asset_id", assetID)
}

// insightDate normalises the key date to a calendar date at UTC midnight.
func insightDate(kind string, date *time.Time) error {
	if date.IsZero() {
		return ads.NewError(ads.CodeValidation, "upsert."+kind, "date is required", nil)
	}
	*date = ads.CalendarDate(*date)
	return nil
}
