package accounts

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// Association is one live (brand, platform account) pair of an active brand.
type Association struct {
	BrandID        uint   `json:"brand_id"`
	BrandName      string `json:"brand_name"`
	PlatformID     uint   `json:"platform_id"`
	PlatformInfoID uint   `json:"platform_info_id"`
	AccountID      string `json:"account_id"`
}

func (a Association) Channel() ads.Channel { return ads.Channel(a.PlatformID) }

// PlatformInfoRepo reads platform_info. Soft-deleted rows are never returned.
type PlatformInfoRepo interface {
	GetByID(dbc dbctx.Context, id uint) (*ads.PlatformInfo, error)
	GetByAccount(dbc dbctx.Context, accountID string, channel ads.Channel) (*ads.PlatformInfo, error)
	GetForBrand(dbc dbctx.Context, brandID uint, channel ads.Channel) (*ads.PlatformInfo, error)
	ListForBrand(dbc dbctx.Context, brandID uint, channel ads.Channel) ([]*ads.PlatformInfo, error)
	ListActiveAssociations(dbc dbctx.Context) ([]Association, error)
	ListAccountDetails(dbc dbctx.Context, channel ads.Channel) ([]ads.AccountDetails, error)
	BrandIDsForChannel(dbc dbctx.Context, channel ads.Channel) ([]uint, error)
}

type platformInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlatformInfoRepo(db *gorm.DB, baseLog *logger.Logger) PlatformInfoRepo {
	return &platformInfoRepo{db: db, log: baseLog.With("repo", "PlatformInfoRepo")}
}

func (r *platformInfoRepo) take(q *gorm.DB) (*ads.PlatformInfo, error) {
	var pi ads.PlatformInfo
	err := q.Order("id").Take(&pi).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pi, nil
}

func (r *platformInfoRepo) GetByID(dbc dbctx.Context, id uint) (*ads.PlatformInfo, error) {
	if id == 0 {
		return nil, nil
	}
	return r.take(dbc.DB(r.db).Where("id = ?", id))
}

func (r *platformInfoRepo) GetByAccount(dbc dbctx.Context, accountID string, channel ads.Channel) (*ads.PlatformInfo, error) {
	if accountID == "" {
		return nil, nil
	}
	return r.take(dbc.DB(r.db).Where("account_id = ? AND platform_id = ?", accountID, uint(channel)))
}

// GetForBrand returns the brand's first account on the channel.
func (r *platformInfoRepo) GetForBrand(dbc dbctx.Context, brandID uint, channel ads.Channel) (*ads.PlatformInfo, error) {
	return r.take(dbc.DB(r.db).Where("brand_id = ? AND platform_id = ?", brandID, uint(channel)))
}

// ListForBrand lists the brand's accounts; omnichannel lists every platform.
func (r *platformInfoRepo) ListForBrand(dbc dbctx.Context, brandID uint, channel ads.Channel) ([]*ads.PlatformInfo, error) {
	q := dbc.DB(r.db).Where("brand_id = ?", brandID)
	if channel != ads.ChannelOmnichannel {
		q = q.Where("platform_id = ?", uint(channel))
	}
	var out []*ads.PlatformInfo
	if err := q.Order("platform_id, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *platformInfoRepo) ListActiveAssociations(dbc dbctx.Context) ([]Association, error) {
	var out []Association
	err := dbc.DB(r.db).
		Table("platform_info AS pi").
		Select("b.id AS brand_id, b.name AS brand_name, pi.platform_id, pi.id AS platform_info_id, pi.account_id").
		Joins("JOIN brands b ON b.id = pi.brand_id").
		Where("b.is_active = ? AND b.deleted_at IS NULL AND pi.deleted_at IS NULL", true).
		Order("b.id, pi.platform_id, pi.id").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *platformInfoRepo) ListAccountDetails(dbc dbctx.Context, channel ads.Channel) ([]ads.AccountDetails, error) {
	activeBrands := dbc.DB(r.db).Model(&ads.Brand{}).Select("id").Where("is_active = ?", true)
	platformIDs := dbc.DB(r.db).Model(&ads.Platform{}).Select("id").Where("name = ?", channel.PlatformName())

	var rows []*ads.PlatformInfo
	err := dbc.DB(r.db).
		Where("platform_id IN (?)", platformIDs).
		Where("brand_id IN (?)", activeBrands).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ads.AccountDetails, 0, len(rows))
	for _, pi := range rows {
		out = append(out, ads.AccountDetailsFrom(*pi))
	}
	return out, nil
}

func (r *platformInfoRepo) BrandIDsForChannel(dbc dbctx.Context, channel ads.Channel) ([]uint, error) {
	var ids []uint
	err := dbc.DB(r.db).Model(&ads.PlatformInfo{}).
		Distinct("brand_id").
		Where("platform_id = ?", uint(channel)).
		Order("brand_id").
		Pluck("brand_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
