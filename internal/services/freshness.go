package services

import (
	"context"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos/insights"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

const (
	warnAfter = 24 * time.Hour
	failAfter = 48 * time.Hour
)

// StatusResult is one health verdict for a brand on a channel.
type StatusResult struct {
	Status  ads.Status `json:"status"`
	Color   string     `json:"color"`
	Message string     `json:"message"`
	Channel string     `json:"channel"`
	BrandID uint       `json:"brand_id"`
}

func newResult(s ads.Status, msg string, brandID uint, channel ads.Channel) StatusResult {
	return StatusResult{Status: s, Color: s.ColorHex(), Message: msg, Channel: channel.String(), BrandID: brandID}
}

// ClassifyFreshness grades how stale last is at now. The age is a full
// datetime delta, so an insight dated exactly 24h before now is a warning.
func ClassifyFreshness(now time.Time, last *time.Time, brandID uint, channel ads.Channel) StatusResult {
	if last == nil || last.IsZero() {
		return newResult(ads.StatusUnknown, "No insights in DB", brandID, channel)
	}
	msg := "last insight in DB: " + last.Format(ads.DateLayout)
	age := now.Sub(*last)
	switch {
	case age < warnAfter:
		return newResult(ads.StatusOK, msg, brandID, channel)
	case age < failAfter:
		return newResult(ads.StatusWarning, msg, brandID, channel)
	default:
		return newResult(ads.StatusFailed, msg, brandID, channel)
	}
}

// FreshnessEvaluator grades OTL health from the newest daily insight.
type FreshnessEvaluator struct {
	platformInfo repos.PlatformInfoRepo
	insights     repos.InsightRepo
	now          func() time.Time
	log          *logger.Logger
}

func NewFreshnessEvaluator(platformInfo repos.PlatformInfoRepo, insightRepo repos.InsightRepo, baseLog *logger.Logger) *FreshnessEvaluator {
	return &FreshnessEvaluator{
		platformInfo: platformInfo,
		insights:     insightRepo,
		now:          time.Now,
		log:          baseLog.With("service", "FreshnessEvaluator"),
	}
}

// WithClock replaces the wall clock, for tests and replays.
func (f *FreshnessEvaluator) WithClock(now func() time.Time) *FreshnessEvaluator {
	f.now = now
	return f
}

// Evaluate never fails for missing data: a brand without an account on the
// channel, or an account without insights, is UNKNOWN. A brand with several
// accounts on the channel is graded by its first one.
func (f *FreshnessEvaluator) Evaluate(ctx context.Context, brandID uint, channel ads.Channel) (StatusResult, error) {
	if err := checkStatusChannel("freshness.Evaluate", channel); err != nil {
		return StatusResult{}, err
	}
	pi, err := f.platformInfo.GetForBrand(dbctx.Context{Ctx: ctx}, brandID, channel)
	if err != nil {
		return StatusResult{}, ads.Wrap(ads.CodeInternal, "freshness.Evaluate", err)
	}
	var platformInfoID uint
	if pi != nil {
		platformInfoID = pi.ID
	}
	return f.evaluate(ctx, brandID, channel, platformInfoID)
}

// EvaluateAccount grades one platform_info row.
func (f *FreshnessEvaluator) EvaluateAccount(ctx context.Context, brandID uint, channel ads.Channel, platformInfoID uint) (StatusResult, error) {
	if err := checkStatusChannel("freshness.EvaluateAccount", channel); err != nil {
		return StatusResult{}, err
	}
	return f.evaluate(ctx, brandID, channel, platformInfoID)
}

func (f *FreshnessEvaluator) evaluate(ctx context.Context, brandID uint, channel ads.Channel, platformInfoID uint) (StatusResult, error) {
	var last *time.Time
	if platformInfoID != 0 {
		var err error
		last, err = f.insights.LatestDate(dbctx.Context{Ctx: ctx}, insights.TableDaily, platformInfoID)
		if err != nil {
			return StatusResult{}, ads.Wrap(ads.CodeInternal, "freshness.Evaluate", err)
		}
	}
	res := ClassifyFreshness(f.now().UTC(), last, brandID, channel)
	f.log.Debug("Freshness evaluated", "brand_id", brandID, "channel", channel.String(),
		"platform_info_id", platformInfoID, "status", res.Status.String())
	return res, nil
}

func checkStatusChannel(op string, channel ads.Channel) error {
	if !channel.Valid() || channel == ads.ChannelOmnichannel {
		return ads.NewError(ads.CodeUnknownChannel, op, "unsupported channel "+channel.String(), ads.ErrUnknownChannel)
	}
	return nil
}
