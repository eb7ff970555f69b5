package ads

import "time"

type DailyInsight struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PlatformInfoID uint      `gorm:"column:platform_info_id;not null;uniqueIndex:idx_daily_insights_key,priority:1" json:"platform_info_id"`
	PlatformAdID   string    `gorm:"column:platform_ad_id;size:100;not null;uniqueIndex:idx_daily_insights_key,priority:2" json:"platform_ad_id"`
	Date           time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_insights_key,priority:3" json:"date"`
	Spend          *string   `gorm:"column:spend;size:32" json:"spend,omitempty"`
}

func (DailyInsight) TableName() string { return "daily_insights" }

type CampaignDailyInsight struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	PlatformInfoID     uint      `gorm:"column:platform_info_id;not null;uniqueIndex:idx_campaigns_daily_insights_key,priority:1" json:"platform_info_id"`
	PlatformCampaignID string    `gorm:"column:platform_campaign_id;size:100;not null;uniqueIndex:idx_campaigns_daily_insights_key,priority:2" json:"platform_campaign_id"`
	Date               time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_campaigns_daily_insights_key,priority:3" json:"date"`
	Spend              *string   `gorm:"column:spend;size:32" json:"spend,omitempty"`
}

func (CampaignDailyInsight) TableName() string { return "campaigns_daily_insights" }

type NetworkInsight struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PlatformInfoID uint      `gorm:"column:platform_info_id;not null;uniqueIndex:idx_network_insights_key,priority:1" json:"platform_info_id"`
	PlatformAdID   string    `gorm:"column:platform_ad_id;size:100;not null;uniqueIndex:idx_network_insights_key,priority:2" json:"platform_ad_id"`
	Network        string    `gorm:"column:network;size:100;not null;uniqueIndex:idx_network_insights_key,priority:3" json:"network"`
	Date           time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_network_insights_key,priority:4" json:"date"`
	Spend          *string   `gorm:"column:spend;size:32" json:"spend,omitempty"`
}

func (NetworkInsight) TableName() string { return "network_insights" }

type ImageAssetInsight struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PlatformInfoID  uint      `gorm:"column:platform_info_id;not null;uniqueIndex:idx_image_asset_insights_key,priority:1" json:"platform_info_id"`
	PlatformAdID    string    `gorm:"column:platform_ad_id;size:255;not null;uniqueIndex:idx_image_asset_insights_key,priority:2" json:"platform_ad_id"`
	PlatformAssetID string    `gorm:"column:platform_asset_id;size:255;not null;uniqueIndex:idx_image_asset_insights_key,priority:3" json:"platform_asset_id"`
	Date            time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_image_asset_insights_key,priority:4" json:"date"`
	Spend           *string   `gorm:"column:spend;size:32" json:"spend,omitempty"`
}

func (ImageAssetInsight) TableName() string { return "image_asset_insights" }

type VideoAssetInsight struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PlatformInfoID  uint      `gorm:"column:platform_info_id;not null;uniqueIndex:idx_video_asset_insights_key,priority:1" json:"platform_info_id"`
	PlatformAdID    string    `gorm:"column:platform_ad_id;size:255;not null;uniqueIndex:idx_video_asset_insights_key,priority:2" json:"platform_ad_id"`
	PlatformAssetID string    `gorm:"column:platform_asset_id;size:255;not null;uniqueIndex:idx_video_asset_insights_key,priority:3" json:"platform_asset_id"`
	Date            time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_video_asset_insights_key,priority:4" json:"date"`
	Spend           *string   `gorm:"column:spend;size:32" json:"spend,omitempty"`
}

func (VideoAssetInsight) TableName() string { return "video_asset_insights" }

type TextAssetInsight struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PlatformInfoID  uint      `gorm:"column:platform_info_id;not null;uniqueIndex:idx_text_asset_insights_key,priority:1" json:"platform_info_id"`
	PlatformAdID    string    `gorm:"column:platform_ad_id;size:255;not null;uniqueIndex:idx_text_asset_insights_key,priority:2" json:"platform_ad_id"`
	PlatformAssetID string    `gorm:"column:platform_asset_id;size:255;not null;uniqueIndex:idx_text_asset_insights_key,priority:3" json:"platform_asset_id"`
	Date            time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_text_asset_insights_key,priority:4" json:"date"`
	Spend           *string   `gorm:"column:spend;size:32" json:"spend,omitempty"`
	TextType        *string   `gorm:"column:text_type;size:16" json:"text_type,omitempty"`
}

func (TextAssetInsight) TableName() string { return "text_asset_insights" }

// CalendarDate truncates t to its calendar date at UTC midnight, the form every
// insight date is stored in.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = "2006-01-02"

// ParseDate accepts "YYYY-MM-DD" and anything that starts with it, which covers
// the textual forms MAX(date) comes back as across drivers.
func ParseDate(raw string) (time.Time, error) {
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	return time.Parse(DateLayout, raw)
}

// AllModels lists every table the schema migration manages.
func AllModels() []any {
	return []any{
		&Platform{},
		&Company{},
		&Brand{},
		&PlatformInfo{},
		&Campaign{},
		&AdGroup{},
		&AdCreative{},
		&Ad{},
		&ImageAsset{},
		&VideoAsset{},
		&TextAsset{},
		&DailyInsight{},
		&CampaignDailyInsight{},
		&NetworkInsight{},
		&ImageAssetInsight{},
		&VideoAssetInsight{},
		&TextAssetInsight{},
	}
}
