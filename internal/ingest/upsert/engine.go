// Package upsert merges fetched advertising entities into the store by natural
// key. Each kind is described by a Descriptor; one generic routine does the
// lookup, the column diff and the single write.
//
// Two concurrent upserts of the same natural key are not serialised: no row
// locks are taken and the later write wins.
package upsert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/dbctx"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// InsightWriteTries is one write plus three immediate retries.
const InsightWriteTries = 4

type Engine struct {
	db  *gorm.DB
	log *logger.Logger
	// managedPrefix marks sources already migrated to managed storage.
	managedPrefix string
	metrics       *observability.Metrics
}

func NewEngine(db *gorm.DB, baseLog *logger.Logger, managedPrefix string) *Engine {
	return &Engine{
		db:            db,
		log:           baseLog.With("service", "UpsertEngine"),
		managedPrefix: strings.TrimSpace(managedPrefix),
	}
}

// IsManaged reports whether source already points at managed storage.
func (e *Engine) IsManaged(source string) bool {
	return e.managedPrefix != "" && strings.HasPrefix(source, e.managedPrefix)
}

func (e *Engine) ManagedPrefix() string { return e.managedPrefix }

// WithMetrics counts every upsert outcome on m. A nil m disables counting.
func (e *Engine) WithMetrics(m *observability.Metrics) *Engine {
	e.metrics = m
	return e
}

func run[T any](dbc dbctx.Context, e *Engine, d *Descriptor[T], rec *T) (Result, error) {
	if rec == nil {
		return Result{}, ads.NewError(ads.CodeValidation, "upsert."+d.Kind, "nil record", nil)
	}
	if dbc.Ctx == nil {
		dbc.Ctx = context.Background()
	}
	ctx, span := otel.Tracer("upsert").Start(dbc.Ctx, "upsert."+d.Kind)
	defer span.End()
	dbc.Ctx = ctx

	res, err := upsert(dbc, e, d, rec)
	span.SetAttributes(attribute.String("upsert.action", string(res.Action)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.IncUpsert(d.Kind, "failed")
	} else {
		e.metrics.IncUpsert(d.Kind, string(res.Action))
	}
	return res, err
}

func upsert[T any](dbc dbctx.Context, e *Engine, d *Descriptor[T], rec *T) (Result, error) {
	op := "upsert." + d.Kind
	if d.Derive != nil {
		if err := d.Derive(rec); err != nil {
			return Result{}, err
		}
	}
	key := d.Key(rec)
	log := e.log.With("kind", d.Kind, "key", key)

	if d.Parents != nil {
		if err := e.checkParents(dbc, op, d.Parents(rec)); err != nil {
			return Result{}, err
		}
	}

	var stored T
	err := dbc.DB(e.db).Where(key).Take(&stored).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if werr := write(dbc, e, d, func(db *gorm.DB) error { return db.Create(rec).Error }); werr != nil {
			return Result{}, werr
		}
		log.Debug("Inserted row", "id", d.ID(rec))
		return Result{ID: d.ID(rec), Action: ActionInserted}, nil
	case err != nil:
		return Result{}, ads.Wrap(ads.CodeInternal, op, err)
	}

	changes, names, err := diff(e, d, rec, &stored)
	if err != nil {
		return Result{}, err
	}
	id := d.ID(&stored)
	if len(changes) == 0 {
		return Result{ID: id, Action: ActionUnchanged}, nil
	}
	werr := write(dbc, e, d, func(db *gorm.DB) error {
		return db.Model(new(T)).Where("id = ?", id).Updates(changes).Error
	})
	if werr != nil {
		return Result{}, werr
	}
	log.Debug("Updated row", "id", id, "columns", names)
	return Result{ID: id, Action: ActionUpdated, Changed: names}, nil
}

// diff returns the supplied columns whose value differs from the stored row.
func diff[T any](e *Engine, d *Descriptor[T], rec, stored *T) (map[string]any, []string, error) {
	changes := map[string]any{}
	var names []string
	for _, col := range d.Columns {
		supplied := col.Value(rec)
		if supplied == nil {
			continue
		}
		current := col.Value(stored)
		if col.Policy == NoOverwriteOnceMigrated {
			if s, ok := current.(string); ok && e.IsManaged(s) {
				continue
			}
		}
		var same bool
		if col.Equal != nil {
			var err error
			if same, err = col.Equal(supplied, current); err != nil {
				return nil, nil, fmt.Errorf("%s column %s: %w", d.Kind, col.Name, err)
			}
		} else {
			same = supplied == current
		}
		if !same {
			changes[col.Name] = supplied
			names = append(names, col.Name)
		}
	}
	return changes, names, nil
}

func write[T any](dbc dbctx.Context, e *Engine, d *Descriptor[T], fn func(db *gorm.DB) error) error {
	op := "upsert." + d.Kind
	if d.WriteTries <= 1 {
		if err := fn(dbc.DB(e.db)); err != nil {
			return ads.Wrap(ads.CodeInternal, op, err)
		}
		return nil
	}
	attempt := 0
	_, err := backoff.Retry(dbc.Ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, fn(dbc.DB(e.db))
	},
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(d.WriteTries),
		backoff.WithNotify(func(err error, _ time.Duration) {
			e.log.Warn("Write attempt failed, retrying", "kind", d.Kind, "attempt", attempt, "error", err)
		}),
	)
	if err != nil {
		e.log.Error("Write failed after retries", "kind", d.Kind, "attempts", attempt, "error", err)
		return ads.NewError(ads.CodeRetryable, op, fmt.Sprintf("write failed after %d attempts", attempt), err)
	}
	return nil
}

func (e *Engine) checkParents(dbc dbctx.Context, op string, parents []ParentRef) error {
	for _, p := range parents {
		if p.ID == 0 {
			return ads.NewError(ads.CodeMissingParent, op, p.Table+" id not resolved", ads.ErrMissingParent)
		}
		var n int64
		if err := dbc.DB(e.db).Table(p.Table).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return ads.Wrap(ads.CodeInternal, op, err)
		}
		if n == 0 {
			return ads.NewError(ads.CodeMissingParent, op, fmt.Sprintf("%s %d not found", p.Table, p.ID), ads.ErrMissingParent)
		}
	}
	return nil
}
