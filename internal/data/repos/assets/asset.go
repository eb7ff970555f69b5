package assets

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// SourceRef is one media asset with its current source URI.
type SourceRef struct {
	PlatformAssetID string  `json:"platform_asset_id"`
	Source          *string `json:"source"`
}

type TextRef struct {
	PlatformAssetID string `json:"platform_asset_id"`
	Type            string `json:"type"`
	Text            string `json:"text"`
}

// AdAssets lists the asset ids attached to a single ad.
type AdAssets struct {
	Text  []TextRef `json:"text"`
	Image []string  `json:"image"`
	Video []string  `json:"video"`
}

// AssetRepo reads the image/video/text tables scoped to one platform_info row
// through the owning ads.
type AssetRepo interface {
	UnprocessedSources(dbc dbctx.Context, platformInfoID uint, kind ads.AssetKind, managedPrefix string) (map[string]string, error)
	ImportedIDs(dbc dbctx.Context, platformInfoID uint, kind ads.AssetKind) ([]string, error)
	ListImages(dbc dbctx.Context, platformInfoID uint) ([]*ads.ImageAsset, error)
	ListVideos(dbc dbctx.Context, platformInfoID uint) ([]*ads.VideoAsset, error)
	ListTexts(dbc dbctx.Context, platformInfoID uint) ([]*ads.TextAsset, error)
	ForAd(dbc dbctx.Context, platformInfoID uint, platformAdID string) (AdAssets, error)
	MediaForAccount(dbc dbctx.Context, accountID string, channel ads.Channel, kinds []ads.AssetKind) (map[ads.AssetKind][]SourceRef, error)
	ImagesMissingFaces(dbc dbctx.Context, platformInfoID uint, managedPrefix string) ([]*ads.ImageAsset, error)
	SetImageFaces(dbc dbctx.Context, imageID uint, n int) error
	SetVideoFacesBySource(dbc dbctx.Context, source string, n int) (int64, error)
	ImagesMissingDescription(dbc dbctx.Context, platformInfoID uint) (map[string]string, error)
	SetImageDescriptionBySource(dbc dbctx.Context, source, description string) (int64, error)
	VideosMissingAudio(dbc dbctx.Context, platformInfoID uint) (map[string]string, error)
	SetVideoAudioBySource(dbc dbctx.Context, source string, present bool) (int64, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func mediaTable(op string, kind ads.AssetKind) (string, error) {
	switch kind {
	case ads.AssetImage:
		return ads.ImageAsset{}.TableName(), nil
	case ads.AssetVideo:
		return ads.VideoAsset{}.TableName(), nil
	default:
		return "", ads.NewError(ads.CodeValidation, op, "media kind must be image or video, got "+string(kind), nil)
	}
}

func assetTable(op string, kind ads.AssetKind) (string, error) {
	if kind == ads.AssetText {
		return ads.TextAsset{}.TableName(), nil
	}
	return mediaTable(op, kind)
}

func (r *assetRepo) adIDs(dbc dbctx.Context, platformInfoID uint) *gorm.DB {
	return dbc.DB(r.db).Model(&ads.Ad{}).Select("id").Where("platform_info_id = ?", platformInfoID)
}

// UnprocessedSources maps asset id to source for sources outside managed storage.
// Rows without a source are skipped.
func (r *assetRepo) UnprocessedSources(dbc dbctx.Context, platformInfoID uint, kind ads.AssetKind, managedPrefix string) (map[string]string, error) {
	table, err := mediaTable("assets.UnprocessedSources", kind)
	if err != nil {
		return nil, err
	}
	var rows []SourceRef
	err = dbc.DB(r.db).Table(table).
		Select("platform_asset_id, source").
		Where("source IS NOT NULL AND ad_id IN (?)", r.adIDs(dbc, platformInfoID)).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Source == nil {
			continue
		}
		if managedPrefix != "" && strings.HasPrefix(*row.Source, managedPrefix) {
			continue
		}
		out[row.PlatformAssetID] = *row.Source
	}
	return out, nil
}

func (r *assetRepo) ImportedIDs(dbc dbctx.Context, platformInfoID uint, kind ads.AssetKind) ([]string, error) {
	table, err := assetTable("assets.ImportedIDs", kind)
	if err != nil {
		return nil, err
	}
	var ids []string
	err = dbc.DB(r.db).Table(table).
		Where("ad_id IN (?)", r.adIDs(dbc, platformInfoID)).
		Order("platform_asset_id").
		Pluck("platform_asset_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *assetRepo) ListImages(dbc dbctx.Context, platformInfoID uint) ([]*ads.ImageAsset, error) {
	var out []*ads.ImageAsset
	if err := dbc.DB(r.db).Where("ad_id IN (?)", r.adIDs(dbc, platformInfoID)).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListVideos(dbc dbctx.Context, platformInfoID uint) ([]*ads.VideoAsset, error) {
	var out []*ads.VideoAsset
	if err := dbc.DB(r.db).Where("ad_id IN (?)", r.adIDs(dbc, platformInfoID)).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListTexts(dbc dbctx.Context, platformInfoID uint) ([]*ads.TextAsset, error) {
	var out []*ads.TextAsset
	if err := dbc.DB(r.db).Where("ad_id IN (?)", r.adIDs(dbc, platformInfoID)).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ForAd(dbc dbctx.Context, platformInfoID uint, platformAdID string) (AdAssets, error) {
	out := AdAssets{Text: []TextRef{}, Image: []string{}, Video: []string{}}
	join := func(table string) *gorm.DB {
		return dbc.DB(r.db).Table(table+" AS t").
			Joins("JOIN ads a ON a.id = t.ad_id").
			Where("a.platform_ad_id = ? AND a.platform_info_id = ?", platformAdID, platformInfoID).
			Order("t.id")
	}
	if err := join("text").Select("t.platform_asset_id, t.type, t.text").Scan(&out.Text).Error; err != nil {
		return AdAssets{}, err
	}
	if err := join("image").Pluck("t.platform_asset_id", &out.Image).Error; err != nil {
		return AdAssets{}, err
	}
	if err := join("video").Pluck("t.platform_asset_id", &out.Video).Error; err != nil {
		return AdAssets{}, err
	}
	return out, nil
}

// MediaForAccount lists image and video sources for every live account with
// the given account id on the channel. Text kinds are skipped with a warning.
func (r *assetRepo) MediaForAccount(dbc dbctx.Context, accountID string, channel ads.Channel, kinds []ads.AssetKind) (map[ads.AssetKind][]SourceRef, error) {
	if len(kinds) == 0 {
		kinds = []ads.AssetKind{ads.AssetImage, ads.AssetVideo}
	}
	out := make(map[ads.AssetKind][]SourceRef, len(kinds))
	for _, kind := range kinds {
		table, err := mediaTable("assets.MediaForAccount", kind)
		if err != nil {
			r.log.Warn("skipping asset kind", "kind", kind, "account_id", accountID)
			continue
		}
		rows := []SourceRef{}
		err = dbc.DB(r.db).Table(table+" AS t").
			Select("t.platform_asset_id, t.source").
			Joins("JOIN ads a ON a.id = t.ad_id").
			Joins("JOIN platform_info pi ON pi.id = a.platform_info_id").
			Where("pi.account_id = ? AND pi.platform_id = ? AND pi.deleted_at IS NULL", accountID, uint(channel)).
			Order("t.id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		out[kind] = rows
	}
	return out, nil
}

// ImagesMissingFaces returns migrated images whose face count is unknown.
func (r *assetRepo) ImagesMissingFaces(dbc dbctx.Context, platformInfoID uint, managedPrefix string) ([]*ads.ImageAsset, error) {
	var rows []*ads.ImageAsset
	err := dbc.DB(r.db).
		Where("no_of_faces IS NULL AND source IS NOT NULL AND ad_id IN (?)", r.adIDs(dbc, platformInfoID)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, img := range rows {
		if managedPrefix != "" && strings.HasPrefix(*img.Source, managedPrefix) {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *assetRepo) SetImageFaces(dbc dbctx.Context, imageID uint, n int) error {
	res := dbc.DB(r.db).Model(&ads.ImageAsset{}).Where("id = ?", imageID).Update("no_of_faces", n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ads.NewError(ads.CodeNotFound, "assets.SetImageFaces", "image not found", ads.ErrNotFound)
	}
	return nil
}

func (r *assetRepo) SetVideoFacesBySource(dbc dbctx.Context, source string, n int) (int64, error) {
	res := dbc.DB(r.db).Model(&ads.VideoAsset{}).Where("source = ?", source).Update("no_of_faces", n)
	return res.RowsAffected, res.Error
}

// ImagesMissingDescription maps asset id to source for images still waiting on
// a generated description.
func (r *assetRepo) ImagesMissingDescription(dbc dbctx.Context, platformInfoID uint) (map[string]string, error) {
	return r.pendingSources(dbc, ads.ImageAsset{}.TableName(), "blip2_image_desc", platformInfoID)
}

// SetImageDescriptionBySource updates every image row sharing source,
// whichever account it belongs to.
func (r *assetRepo) SetImageDescriptionBySource(dbc dbctx.Context, source, description string) (int64, error) {
	res := dbc.DB(r.db).Model(&ads.ImageAsset{}).Where("source = ?", source).Update("blip2_image_desc", description)
	return res.RowsAffected, res.Error
}

// VideosMissingAudio maps asset id to source for videos whose audio track has
// not been checked.
func (r *assetRepo) VideosMissingAudio(dbc dbctx.Context, platformInfoID uint) (map[string]string, error) {
	return r.pendingSources(dbc, ads.VideoAsset{}.TableName(), "is_audio_present", platformInfoID)
}

func (r *assetRepo) SetVideoAudioBySource(dbc dbctx.Context, source string, present bool) (int64, error) {
	res := dbc.DB(r.db).Model(&ads.VideoAsset{}).Where("source = ?", source).Update("is_audio_present", present)
	return res.RowsAffected, res.Error
}

// column is interpolated into the query and must be a fixed column name.
func (r *assetRepo) pendingSources(dbc dbctx.Context, table, column string, platformInfoID uint) (map[string]string, error) {
	var rows []SourceRef
	err := dbc.DB(r.db).Table(table).
		Select("platform_asset_id, source").
		Where(column+" IS NULL AND source IS NOT NULL AND ad_id IN (?)", r.adIDs(dbc, platformInfoID)).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Source != nil {
			out[row.PlatformAssetID] = *row.Source
		}
	}
	return out, nil
}
