package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

// Batch is everything one fetch produced for one ad account. Records refer to
// their parents by platform ids; internal ids are resolved while processing.
type Batch struct {
	AccountID string      `json:"account_id"`
	Channel   ads.Channel `json:"channel"`

	Campaigns []ads.Campaign  `json:"campaigns"`
	AdGroups  []AdGroupRecord `json:"ad_groups"`
	Ads       []AdRecord      `json:"ads"`

	DailyInsights      []InsightRecord `json:"daily_insights"`
	CampaignInsights   []InsightRecord `json:"campaign_insights"`
	NetworkInsights    []InsightRecord `json:"network_insights"`
	ImageAssetInsights []InsightRecord `json:"image_asset_insights"`
	VideoAssetInsights []InsightRecord `json:"video_asset_insights"`
	TextAssetInsights  []InsightRecord `json:"text_asset_insights"`
}

type AdGroupRecord struct {
	ads.AdGroup
	PlatformCampaignID string `json:"platform_campaign_id"`
}

// AdRecord is an ad with the creative it renders and the assets it carries.
// When Creative is nil the ad links to an already stored creative through
// PlatformAdCreativeID.
type AdRecord struct {
	ads.Ad
	PlatformAdGroupID    string           `json:"platform_ad_group_id"`
	PlatformAdCreativeID string           `json:"platform_ad_creative_id,omitempty"`
	Creative             *ads.AdCreative  `json:"creative,omitempty"`
	Images               []ads.ImageAsset `json:"images,omitempty"`
	Videos               []ads.VideoAsset `json:"videos,omitempty"`
	Texts                []ads.TextAsset  `json:"texts,omitempty"`
}

// InsightRecord carries the union of insight key fields; which ones matter
// depends on the array it sits in.
type InsightRecord struct {
	PlatformAdID       string  `json:"platform_ad_id,omitempty"`
	PlatformCampaignID string  `json:"platform_campaign_id,omitempty"`
	PlatformAssetID    string  `json:"platform_asset_id,omitempty"`
	Network            string  `json:"network,omitempty"`
	TextType           *string `json:"text_type,omitempty"`
	Date               Date    `json:"date"`
	Spend              *Amount `json:"spend,omitempty"`
}

// Date decodes "YYYY-MM-DD" (or any timestamp starting with it) into a calendar date.
type Date struct{ time.Time }

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ads.ParseDate(raw)
	if err != nil {
		return fmt.Errorf("date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(ads.DateLayout))
}

// Amount accepts a JSON number or string and keeps its textual form, so
// decimal spend values are stored exactly as fetched.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

func (a *Amount) ptr() *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

// Validate checks the batch header; records are validated one by one while processing.
func (b *Batch) Validate() error {
	if strings.TrimSpace(b.AccountID) == "" {
		return ads.NewError(ads.CodeValidation, "pipeline.Batch", "account_id is required", nil)
	}
	if !b.Channel.Valid() || b.Channel == ads.ChannelOmnichannel {
		return ads.NewError(ads.CodeUnknownChannel, "pipeline.Batch", "batch channel must be an ad channel", ads.ErrUnknownChannel)
	}
	return nil
}

// Size is the number of records in the batch.
func (b *Batch) Size() int {
	n := len(b.Campaigns) + len(b.AdGroups) + len(b.DailyInsights) + len(b.CampaignInsights) +
		len(b.NetworkInsights) + len(b.ImageAssetInsights) + len(b.VideoAssetInsights) + len(b.TextAssetInsights)
	for _, a := range b.Ads {
		n += 1 + len(a.Images) + len(a.Videos) + len(a.Texts)
		if a.Creative != nil {
			n++
		}
	}
	return n
}

func DecodeBatch(raw []byte) (*Batch, error) {
	var b Batch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, ads.NewError(ads.CodeMalformed, "pipeline.DecodeBatch", "decode batch", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func LoadBatchFile(path string) (*Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", path, err)
	}
	b, err := DecodeBatch(raw)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", path, err)
	}
	return b, nil
}
