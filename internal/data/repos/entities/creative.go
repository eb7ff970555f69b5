package entities

import (
	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type CreativeRepo interface {
	ListByPlatformInfo(dbc dbctx.Context, platformInfoID uint) ([]*ads.AdCreative, error)
}

type creativeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreativeRepo(db *gorm.DB, baseLog *logger.Logger) CreativeRepo {
	return &creativeRepo{db: db, log: baseLog.With("repo", "CreativeRepo")}
}

func (r *creativeRepo) ListByPlatformInfo(dbc dbctx.Context, platformInfoID uint) ([]*ads.AdCreative, error) {
	var out []*ads.AdCreative
	if err := dbc.DB(r.db).Where("platform_info_id = ?", platformInfoID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type AdRepo interface {
	ListByCreatives(dbc dbctx.Context, platformInfoID uint, creativeIDs []uint) ([]*ads.Ad, error)
	GetByPlatformAdID(dbc dbctx.Context, platformInfoID uint, platformAdID string) (*ads.Ad, error)
}

type adRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdRepo(db *gorm.DB, baseLog *logger.Logger) AdRepo {
	return &adRepo{db: db, log: baseLog.With("repo", "AdRepo")}
}

func (r *adRepo) ListByCreatives(dbc dbctx.Context, platformInfoID uint, creativeIDs []uint) ([]*ads.Ad, error) {
	if len(creativeIDs) == 0 {
		return []*ads.Ad{}, nil
	}
	var out []*ads.Ad
	err := dbc.DB(r.db).
		Where("platform_info_id = ? AND ad_creative_id IN ?", platformInfoID, creativeIDs).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *adRepo) GetByPlatformAdID(dbc dbctx.Context, platformInfoID uint, platformAdID string) (*ads.Ad, error) {
	var out []*ads.Ad
	err := dbc.DB(r.db).
		Where("platform_info_id = ? AND platform_ad_id = ?", platformInfoID, platformAdID).
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
