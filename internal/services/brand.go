package services

import (
	"context"
	"fmt"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type BrandDetails struct {
	*ads.Brand
	Accounts []*ads.PlatformInfo `json:"accounts"`
}

type BrandService interface {
	ListActive(ctx context.Context) ([]*ads.Brand, error)
	Get(ctx context.Context, id uint) (*BrandDetails, error)
}

type brandService struct {
	brands       repos.BrandRepo
	platformInfo repos.PlatformInfoRepo
	log          *logger.Logger
}

func NewBrandService(log *logger.Logger, brands repos.BrandRepo, platformInfo repos.PlatformInfoRepo) BrandService {
	return &brandService{brands: brands, platformInfo: platformInfo, log: log.With("service", "BrandService")}
}

func (s *brandService) ListActive(ctx context.Context) ([]*ads.Brand, error) {
	out, err := s.brands.ListActive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "brands.ListActive", err)
	}
	return out, nil
}

func (s *brandService) Get(ctx context.Context, id uint) (*BrandDetails, error) {
	dbc := dbctx.Context{Ctx: ctx}
	b, err := s.brands.GetByID(dbc, id)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "brands.Get", err)
	}
	if b == nil {
		return nil, ads.NewError(ads.CodeNotFound, "brands.Get", fmt.Sprintf("brand %d", id), ads.ErrNotFound)
	}
	accounts, err := s.platformInfo.ListForBrand(dbc, id, ads.ChannelOmnichannel)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "brands.Get", err)
	}
	return &BrandDetails{Brand: b, Accounts: accounts}, nil
}
