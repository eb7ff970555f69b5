package entities

import (
	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// LookupRepo resolves external platform ids to internal row ids within one
// account. A zero id with a nil error means the row does not exist.
type LookupRepo interface {
	CampaignID(dbc dbctx.Context, platformInfoID uint, platformCampaignID string) (uint, error)
	AdGroupID(dbc dbctx.Context, platformInfoID uint, platformAdGroupID string) (uint, error)
	AdCreativeID(dbc dbctx.Context, platformInfoID uint, platformAdCreativeID string) (uint, error)
	AdID(dbc dbctx.Context, platformInfoID uint, platformAdID string) (uint, error)
}

type lookupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLookupRepo(db *gorm.DB, baseLog *logger.Logger) LookupRepo {
	return &lookupRepo{db: db, log: baseLog.With("repo", "LookupRepo")}
}

func (r *lookupRepo) findID(dbc dbctx.Context, model any, column string, platformInfoID uint, externalID string) (uint, error) {
	if platformInfoID == 0 || externalID == "" {
		return 0, nil
	}
	var ids []uint
	err := dbc.DB(r.db).Model(model).
		Where("platform_info_id = ? AND "+column+" = ?", platformInfoID, externalID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

func (r *lookupRepo) CampaignID(dbc dbctx.Context, platformInfoID uint, platformCampaignID string) (uint, error) {
	return r.findID(dbc, &ads.Campaign{}, "platform_campaign_id", platformInfoID, platformCampaignID)
}

func (r *lookupRepo) AdGroupID(dbc dbctx.Context, platformInfoID uint, platformAdGroupID string) (uint, error) {
	return r.findID(dbc, &ads.AdGroup{}, "platform_ad_group_id", platformInfoID, platformAdGroupID)
}

func (r *lookupRepo) AdCreativeID(dbc dbctx.Context, platformInfoID uint, platformAdCreativeID string) (uint, error) {
	return r.findID(dbc, &ads.AdCreative{}, "platform_ad_creative_id", platformInfoID, platformAdCreativeID)
}

func (r *lookupRepo) AdID(dbc dbctx.Context, platformInfoID uint, platformAdID string) (uint, error) {
	return r.findID(dbc, &ads.Ad{}, "platform_ad_id", platformInfoID, platformAdID)
}
