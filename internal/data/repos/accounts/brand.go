package accounts

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type BrandRepo interface {
	GetByID(dbc dbctx.Context, id uint) (*ads.Brand, error)
	ListActive(dbc dbctx.Context) ([]*ads.Brand, error)
}

type brandRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBrandRepo(db *gorm.DB, baseLog *logger.Logger) BrandRepo {
	return &brandRepo{db: db, log: baseLog.With("repo", "BrandRepo")}
}

func (r *brandRepo) GetByID(dbc dbctx.Context, id uint) (*ads.Brand, error) {
	if id == 0 {
		return nil, nil
	}
	var b ads.Brand
	err := dbc.DB(r.db).Where("id = ?", id).Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *brandRepo) ListActive(dbc dbctx.Context) ([]*ads.Brand, error) {
	var out []*ads.Brand
	if err := dbc.DB(r.db).Where("is_active = ?", true).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
