package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/repos"
	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/jobs/runner"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

type BrandStatus struct {
	BrandID   uint         `json:"brand_id"`
	BrandName string       `json:"brand_name,omitempty"`
	AccountID string       `json:"account_id,omitempty"`
	Channel   ads.Channel  `json:"channel"`
	Airbyte   StatusResult `json:"airbyte_status"`
	OTL       StatusResult `json:"otl_status"`
	Error     string       `json:"error,omitempty"`
}

type StatusService interface {
	BrandStatus(ctx context.Context, brandID uint, channel ads.Channel) (*BrandStatus, error)
	// AllStatuses returns one row per live association, in association order.
	// A row that could not be evaluated carries Error and UNKNOWN verdicts.
	AllStatuses(ctx context.Context) ([]BrandStatus, error)
}

type statusService struct {
	brands       repos.BrandRepo
	platformInfo repos.PlatformInfoRepo
	freshness    *FreshnessEvaluator
	sync         *SyncStatusEvaluator
	runner       *runner.Runner
	metrics      *observability.Metrics
	log          *logger.Logger
}

func NewStatusService(
	log *logger.Logger,
	brands repos.BrandRepo,
	platformInfo repos.PlatformInfoRepo,
	freshness *FreshnessEvaluator,
	sync *SyncStatusEvaluator,
	r *runner.Runner,
	metrics *observability.Metrics,
) StatusService {
	return &statusService{
		brands:       brands,
		platformInfo: platformInfo,
		freshness:    freshness,
		sync:         sync,
		runner:       r.Named("brand_status"),
		metrics:      metrics,
		log:          log.With("service", "StatusService"),
	}
}

func (s *statusService) BrandStatus(ctx context.Context, brandID uint, channel ads.Channel) (*BrandStatus, error) {
	brand, err := s.brands.GetByID(dbctx.Context{Ctx: ctx}, brandID)
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "status.BrandStatus", err)
	}
	if brand == nil {
		return nil, ads.NewError(ads.CodeNotFound, "status.BrandStatus", fmt.Sprintf("brand %d", brandID), ads.ErrNotFound)
	}
	st, err := s.evaluate(ctx, brandID, channel, 0)
	if err != nil {
		return nil, err
	}
	st.BrandName = brand.Name
	return st, nil
}

// evaluate grades platformInfoID, or the brand's first account on the
// channel when it is zero.
func (s *statusService) evaluate(ctx context.Context, brandID uint, channel ads.Channel, platformInfoID uint) (st *BrandStatus, err error) {
	ctx, span := observability.StartSpan(ctx, "status.evaluate",
		attribute.Int("brand.id", int(brandID)),
		attribute.String("channel", channel.String()),
		attribute.Int("platform_info.id", int(platformInfoID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	var otl StatusResult
	if platformInfoID != 0 {
		otl, err = s.freshness.EvaluateAccount(ctx, brandID, channel, platformInfoID)
	} else {
		otl, err = s.freshness.Evaluate(ctx, brandID, channel)
	}
	if err != nil {
		return nil, err
	}
	sync, err := s.sync.Evaluate(ctx, brandID, channel)
	if err != nil {
		return nil, err
	}
	s.metrics.IncStatus("otl", otl.Status.String())
	s.metrics.IncStatus("airbyte", sync.Status.String())
	return &BrandStatus{BrandID: brandID, Channel: channel, Airbyte: sync, OTL: otl}, nil
}

func (s *statusService) AllStatuses(ctx context.Context) ([]BrandStatus, error) {
	assocs, err := s.platformInfo.ListActiveAssociations(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, ads.Wrap(ads.CodeInternal, "status.AllStatuses", err)
	}
	units := make([]runner.Unit[*BrandStatus], len(assocs))
	for i, a := range assocs {
		units[i] = runner.Unit[*BrandStatus]{
			Name: fmt.Sprintf("brand=%d channel=%s account=%s", a.BrandID, a.Channel(), a.AccountID),
			Run: func(ctx context.Context) (*BrandStatus, error) {
				return s.evaluate(ctx, a.BrandID, a.Channel(), a.PlatformInfoID)
			},
		}
	}
	results := runner.Run(ctx, s.runner, units)

	rows := make([]BrandStatus, len(assocs))
	for i, res := range results {
		a := assocs[i]
		if res.Err != nil || res.Value == nil {
			unknown := newResult(ads.StatusUnknown, "status unavailable", a.BrandID, a.Channel())
			rows[i] = BrandStatus{BrandID: a.BrandID, Channel: a.Channel(), Airbyte: unknown, OTL: unknown}
			if res.Err != nil {
				rows[i].Error = res.Err.Error()
			}
		} else {
			rows[i] = *res.Value
		}
		rows[i].BrandName = a.BrandName
		rows[i].AccountID = a.AccountID
	}
	return rows, nil
}
