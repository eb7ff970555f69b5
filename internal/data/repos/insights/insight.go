package insights

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// Table names an insight table that carries platform_info_id and date.
type Table string

const (
	TableDaily      Table = "daily_insights"
	TableImageAsset Table = "image_asset_insights"
	TableVideoAsset Table = "video_asset_insights"
	TableTextAsset  Table = "text_asset_insights"
	TableCampaign   Table = "campaigns_daily_insights"
	TableNetwork    Table = "network_insights"
)

// StatsTables are the tables summarised by the dashboard stats view, in column order.
var StatsTables = []Table{TableDaily, TableImageAsset, TableVideoAsset, TableTextAsset}

func (t Table) valid() bool {
	switch t {
	case TableDaily, TableImageAsset, TableVideoAsset, TableTextAsset, TableCampaign, TableNetwork:
		return true
	}
	return false
}

type BrandPlatform struct {
	BrandID    uint
	PlatformID uint
}

type InsightRepo interface {
	LatestDate(dbc dbctx.Context, table Table, platformInfoID uint) (*time.Time, error)
	LatestDatesByBrandPlatform(dbc dbctx.Context, table Table) (map[BrandPlatform]time.Time, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

// LatestDate is MAX(date) for one account; nil when the account has no rows.
func (r *insightRepo) LatestDate(dbc dbctx.Context, table Table, platformInfoID uint) (*time.Time, error) {
	if !table.valid() {
		return nil, unknownTable(table)
	}
	var raw sql.NullString
	err := dbc.DB(r.db).Table(string(table)).
		Select("MAX(date)").
		Where("platform_info_id = ?", platformInfoID).
		Row().Scan(&raw)
	if err != nil {
		return nil, err
	}
	return parseMaxDate(raw)
}

type maxRow struct {
	BrandID    uint
	PlatformID uint
	MaxDate    sql.NullString
}

// LatestDatesByBrandPlatform groups MAX(date) by (brand, platform) over active
// brands and live accounts. Pairs without rows are absent from the map.
func (r *insightRepo) LatestDatesByBrandPlatform(dbc dbctx.Context, table Table) (map[BrandPlatform]time.Time, error) {
	if !table.valid() {
		return nil, unknownTable(table)
	}
	var rows []maxRow
	err := dbc.DB(r.db).Table(string(table)+" AS i").
		Select("pi.brand_id AS brand_id, pi.platform_id AS platform_id, MAX(i.date) AS max_date").
		Joins("JOIN platform_info pi ON pi.id = i.platform_info_id").
		Joins("JOIN brands b ON b.id = pi.brand_id").
		Where("b.is_active = ? AND b.deleted_at IS NULL AND pi.deleted_at IS NULL", true).
		Group("pi.brand_id, pi.platform_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[BrandPlatform]time.Time, len(rows))
	for _, row := range rows {
		d, err := parseMaxDate(row.MaxDate)
		if err != nil {
			return nil, err
		}
		if d != nil {
			out[BrandPlatform{BrandID: row.BrandID, PlatformID: row.PlatformID}] = *d
		}
	}
	return out, nil
}

// Drivers disagree on how an aggregated DATE comes back (time, "2006-01-02",
// RFC3339 or sqlite's "2006-01-02 15:04:05"), the calendar date is the first ten bytes.
func parseMaxDate(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	d, err := ads.ParseDate(raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse max(date) %q: %w", raw.String, err)
	}
	return &d, nil
}

func unknownTable(t Table) error {
	return ads.NewError(ads.CodeValidation, "insights", "unknown insight table "+string(t), nil)
}
