package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/assets"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/insights"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/identity"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type AssetService interface {
	// AdsForAsset lists the account's ads whose creative embeds the image hash
	// or video id.
	AdsForAsset(ctx context.Context, accountID string, channel ads.Channel, kind ads.AssetKind, assetID string) ([]*ads.Ad, error)
	AssetsForAd(ctx context.Context, accountID string, channel ads.Channel, platformAdID string) (assets.AdAssets, error)
	ImportedIDs(ctx context.Context, brandID uint, channel ads.Channel, kind ads.AssetKind) ([]string, error)
	MediaForAccount(ctx context.Context, accountID string, channel ads.Channel, kinds []ads.AssetKind) (map[ads.AssetKind][]assets.SourceRef, error)
	LatestInsightDate(ctx context.Context, accountID string, channel ads.Channel) (*time.Time, error)
	AccountDetails(ctx context.Context, channel ads.Channel) ([]ads.AccountDetails, error)
}

type assetService struct {
	platformInfo repos.PlatformInfoRepo
	creatives    repos.CreativeRepo
	ads          repos.AdRepo
	assets       repos.AssetRepo
	insights     repos.InsightRepo
	log          *logger.Logger
}

func NewAssetService(log *logger.Logger, set repos.Set) AssetService {
	return &assetService{
		platformInfo: set.PlatformInfo,
		creatives:    set.Creatives,
		ads:          set.Ads,
		assets:       set.Assets,
		insights:     set.Insights,
		log:          log.With("service", "AssetService"),
	}
}

func checkChannel(op string, channel ads.Channel) error {
	if !channel.Valid() || channel == ads.ChannelOmnichannel {
		return ads.NewError(ads.CodeUnknownChannel, op, "unsupported channel "+channel.String(), ads.ErrUnknownChannel)
	}
	return nil
}

func (s *assetService) byAccount(dbc dbctx.Context, op, accountID string, channel ads.Channel) (*ads.PlatformInfo, error) {
	if err := checkChannel(op, channel); err != nil {
		return nil, err
	}
	pi, err := s.platformInfo.GetByAccount(dbc, accountID, channel)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, op, err)
	}
	if pi == nil {
		return nil, ads.NewError(ads.CodeNotFound, op, fmt.Sprintf("no %s account %q", channel, accountID), ads.ErrNotFound)
	}
	return pi, nil
}

func (s *assetService) AdsForAsset(ctx context.Context, accountID string, channel ads.Channel, kind ads.AssetKind, assetID string) ([]*ads.Ad, error) {
	const op = "assets.AdsForAsset"
	var extract func(ads.AdCreative) (identity.IDSet, error)
	switch kind {
	case ads.AssetImage:
		extract = identity.ExtractImageIDs
	case ads.AssetVideo:
		extract = identity.ExtractVideoIDs
	default:
		return nil, ads.NewError(ads.CodeValidation, op, fmt.Sprintf("asset kind %q is not embedded in creatives", kind), nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	pi, err := s.byAccount(dbc, op, accountID, channel)
	if err != nil {
		return nil, err
	}
	creatives, err := s.creatives.ListByPlatformInfo(dbc, pi.ID)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, op, err)
	}
	byCreative := make(map[uint]identity.IDSet, len(creatives))
	for _, c := range creatives {
		ids, err := extract(*c)
		if err != nil {
			s.log.Warn("Skipping creative with malformed spec", "creative_id", c.ID, "error", err)
			continue
		}
		byCreative[c.ID] = ids
	}
	creativeIDs := identity.Invert(byCreative)[assetID]
	return s.ads.ListByCreatives(dbc, pi.ID, creativeIDs)
}

func (s *assetService) AssetsForAd(ctx context.Context, accountID string, channel ads.Channel, platformAdID string) (assets.AdAssets, error) {
	dbc := dbctx.Context{Ctx: ctx}
	pi, err := s.byAccount(dbc, "assets.AssetsForAd", accountID, channel)
	if err != nil {
		return assets.AdAssets{}, err
	}
	return s.assets.ForAd(dbc, pi.ID, platformAdID)
}

func (s *assetService) ImportedIDs(ctx context.Context, brandID uint, channel ads.Channel, kind ads.AssetKind) ([]string, error) {
	const op = "assets.ImportedIDs"
	if err := checkChannel(op, channel); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	pi, err := s.platformInfo.GetForBrand(dbc, brandID, channel)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, op, err)
	}
	if pi == nil {
		return []string{}, nil
	}
	return s.assets.ImportedIDs(dbc, pi.ID, kind)
}

func (s *assetService) MediaForAccount(ctx context.Context, accountID string, channel ads.Channel, kinds []ads.AssetKind) (map[ads.AssetKind][]assets.SourceRef, error) {
	if err := checkChannel("assets.MediaForAccount", channel); err != nil {
		return nil, err
	}
	return s.assets.MediaForAccount(dbctx.Context{Ctx: ctx}, accountID, channel, kinds)
}

// LatestInsightDate is nil when the account has no daily insights.
func (s *assetService) LatestInsightDate(ctx context.Context, accountID string, channel ads.Channel) (*time.Time, error) {
	dbc := dbctx.Context{Ctx: ctx}
	pi, err := s.byAccount(dbc, "assets.LatestInsightDate", accountID, channel)
	if err != nil {
		return nil, err
	}
	return s.insights.LatestDate(dbc, insights.TableDaily, pi.ID)
}

func (s *assetService) AccountDetails(ctx context.Context, channel ads.Channel) ([]ads.AccountDetails, error) {
	if err := checkChannel("assets.AccountDetails", channel); err != nil {
		return nil, err
	}
	return s.platformInfo.ListAccountDetails(dbctx.Context{Ctx: ctx}, channel)
}
