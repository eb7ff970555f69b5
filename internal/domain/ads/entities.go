package ads

import "gorm.io/datatypes"

// Optional columns are pointers: nil means the source did not supply a value,
// which both maps to NULL on insert and leaves the stored value untouched on update.

type Campaign struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	PlatformInfoID     uint    `gorm:"column:platform_info_id;not null;uniqueIndex:idx_campaigns_key,priority:1" json:"platform_info_id"`
	PlatformCampaignID string  `gorm:"column:platform_campaign_id;size:100;not null;uniqueIndex:idx_campaigns_key,priority:2" json:"platform_campaign_id"`
	Name               *string `gorm:"column:name;size:255" json:"name,omitempty"`
	Objective          *string `gorm:"column:objective;size:64" json:"objective,omitempty"`
	Status             *string `gorm:"column:status;size:25" json:"status,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

type AdGroup struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	PlatformInfoID    uint    `gorm:"column:platform_info_id;not null;uniqueIndex:idx_ad_groups_key,priority:1" json:"platform_info_id"`
	CampaignID        uint    `gorm:"column:campaign_id;index" json:"campaign_id"`
	PlatformAdGroupID string  `gorm:"column:platform_ad_group_id;size:100;not null;uniqueIndex:idx_ad_groups_key,priority:2" json:"platform_ad_group_id"`
	Name              *string `gorm:"column:name;size:200" json:"name,omitempty"`
	Objective         *string `gorm:"column:objective;size:64" json:"objective,omitempty"`
	Status            *string `gorm:"column:status;size:25" json:"status,omitempty"`
}

func (AdGroup) TableName() string { return "ad_groups" }

type AdCreative struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	PlatformInfoID       uint           `gorm:"column:platform_info_id;not null;uniqueIndex:idx_ad_creatives_key,priority:1" json:"platform_info_id"`
	PlatformAdCreativeID string         `gorm:"column:platform_ad_creative_id;size:255;not null;uniqueIndex:idx_ad_creatives_key,priority:2" json:"platform_ad_creative_id"`
	Name                 *string        `gorm:"column:name;size:255" json:"name,omitempty"`
	CTAType              *string        `gorm:"column:cta_type;size:255" json:"cta_type,omitempty"`
	ImageHash            *string        `gorm:"column:image_hash;size:255" json:"image_hash,omitempty"`
	ImageURL             *string        `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Status               *string        `gorm:"column:status;size:255" json:"status,omitempty"`
	ThumbnailURL         *string        `gorm:"column:thumbnail_url;type:text" json:"thumbnail_url,omitempty"`
	Title                *string        `gorm:"column:title;size:255" json:"title,omitempty"`
	VideoID              *string        `gorm:"column:video_id;size:255" json:"video_id,omitempty"`
	ObjectType           *string        `gorm:"column:object_type;size:255" json:"object_type,omitempty"`
	AssetFeedSpecJSON    datatypes.JSON `gorm:"column:asset_feed_spec_json" json:"asset_feed_spec_json,omitempty"`
	ObjectStorySpecJSON  datatypes.JSON `gorm:"column:object_story_spec_json" json:"object_story_spec_json,omitempty"`
}

func (AdCreative) TableName() string { return "ad_creatives" }

type Ad struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	PlatformInfoID uint    `gorm:"column:platform_info_id;not null;uniqueIndex:idx_ads_key,priority:1" json:"platform_info_id"`
	AdGroupID      uint    `gorm:"column:ad_group_id;index" json:"ad_group_id"`
	AdCreativeID   uint    `gorm:"column:ad_creative_id;index" json:"ad_creative_id"`
	PlatformAdID   string  `gorm:"column:platform_ad_id;size:100;not null;uniqueIndex:idx_ads_key,priority:2" json:"platform_ad_id"`
	AdType         *string `gorm:"column:ad_type;size:100" json:"ad_type,omitempty"`
	LandingPageURL *string `gorm:"column:landing_page_url;type:text" json:"landing_page_url,omitempty"`
	Status         *string `gorm:"column:status;size:20" json:"status,omitempty"`
	CTA            *string `gorm:"column:cta;size:64" json:"cta,omitempty"`
}

func (Ad) TableName() string { return "ads" }

type ImageAsset struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	AdID            uint    `gorm:"column:ad_id;not null;uniqueIndex:idx_image_key,priority:1" json:"ad_id"`
	PlatformAssetID string  `gorm:"column:platform_asset_id;size:255;not null;uniqueIndex:idx_image_key,priority:2" json:"platform_asset_id"`
	Source          *string `gorm:"column:source;type:text" json:"source,omitempty"`
	Height          *int    `gorm:"column:height" json:"height,omitempty"`
	Width           *int    `gorm:"column:width" json:"width,omitempty"`
	NoOfFaces       *int    `gorm:"column:no_of_faces" json:"no_of_faces,omitempty"`
	ClipImageDesc   *string `gorm:"column:clip_image_desc;type:text" json:"clip_image_desc,omitempty"`
	Blip2ImageDesc  *string `gorm:"column:blip2_image_desc;type:text" json:"blip2_image_desc,omitempty"`
}

func (ImageAsset) TableName() string { return "image" }

type VideoAsset struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	AdID            uint    `gorm:"column:ad_id;not null;uniqueIndex:idx_video_key,priority:1" json:"ad_id"`
	PlatformAssetID string  `gorm:"column:platform_asset_id;size:255;not null;uniqueIndex:idx_video_key,priority:2" json:"platform_asset_id"`
	Source          *string `gorm:"column:source;type:text" json:"source,omitempty"`
	Duration        *int    `gorm:"column:duration" json:"duration,omitempty"`
	NoOfFaces       *int    `gorm:"column:no_of_faces" json:"no_of_faces,omitempty"`
	IsAudioPresent  *bool   `gorm:"column:is_audio_present" json:"is_audio_present,omitempty"`
	Height          *int    `gorm:"column:height" json:"height,omitempty"`
	Width           *int    `gorm:"column:width" json:"width,omitempty"`
}

func (VideoAsset) TableName() string { return "video" }

// TextAsset carries no platform id; PlatformAssetID is derived from the owning
// ad's platform id, the text and its type.
type TextAsset struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	AdID            uint    `gorm:"column:ad_id;not null;uniqueIndex:idx_text_key,priority:1" json:"ad_id"`
	PlatformAssetID string  `gorm:"column:platform_asset_id;size:255;not null;uniqueIndex:idx_text_key,priority:2" json:"platform_asset_id"`
	Type            string  `gorm:"column:type;size:16" json:"type"`
	Text            string  `gorm:"column:text;type:text" json:"text"`
	Sentiment       *string `gorm:"column:sentiment;size:8" json:"sentiment,omitempty"`

	PlatformAdID string `gorm:"-" json:"platform_ad_id,omitempty"`
}

func (TextAsset) TableName() string { return "text" }

// AssetKind names the three media/text asset tables.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
	AssetText  AssetKind = "text"
)

func ParseAssetKind(raw string) (AssetKind, error) {
	switch AssetKind(raw) {
	case AssetImage, AssetVideo, AssetText:
		return AssetKind(raw), nil
	case "images":
		return AssetImage, nil
	case "videos":
		return AssetVideo, nil
	default:
		return "", NewError(CodeValidation, "ads.ParseAssetKind", "unknown asset kind "+raw, nil)
	}
}
