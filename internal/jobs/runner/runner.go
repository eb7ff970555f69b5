// Package runner fans independent units of work out over a bounded number of
// goroutines and collects one result per unit.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

const (
	DefaultMaxWorkers    = 16
	DefaultProgressEvery = 10 * time.Second
)

// Unit is one synchronous piece of work. Name only shows up in logs and results.
type Unit[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

type Result[T any] struct {
	Name    string
	Value   T
	Err     error
	Elapsed time.Duration
}

type Config struct {
	MaxWorkers    int
	ProgressEvery time.Duration
	Metrics       *observability.Metrics
}

type Runner struct {
	maxWorkers    int
	progressEvery time.Duration
	task          string
	metrics       *observability.Metrics
	log           *logger.Logger
}

func New(baseLog *logger.Logger, cfg Config) *Runner {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	return &Runner{
		maxWorkers:    cfg.MaxWorkers,
		progressEvery: cfg.ProgressEvery,
		task:          "default",
		metrics:       cfg.Metrics,
		log:           baseLog.With("component", "TaskRunner"),
	}
}

func (r *Runner) MaxWorkers() int { return r.maxWorkers }

// Named returns a runner sharing r's limits whose logs and metrics carry task.
func (r *Runner) Named(task string) *Runner {
	cp := *r
	cp.task = task
	cp.log = r.log.With("task", task)
	return &cp
}

type progress struct {
	total, completed, failed, running atomic.Int64
}

// Run executes every unit and returns results in submission order. A failing
// or panicking unit is recorded in its Result and never cancels its siblings;
// units that have not started when ctx is done report ctx.Err().
func Run[T any](ctx context.Context, r *Runner, units []Unit[T]) []Result[T] {
	results := make([]Result[T], len(units))
	if len(units) == 0 {
		return results
	}
	start := time.Now()
	var p progress
	p.total.Store(int64(len(units)))

	stop := make(chan struct{})
	ticked := make(chan struct{})
	go func() {
		defer close(ticked)
		t := time.NewTicker(r.progressEvery)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				r.logProgress(&p, start)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(r.maxWorkers)
	for i := range units {
		g.Go(func() error {
			u := units[i]
			results[i].Name = u.Name
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				p.failed.Add(1)
				return nil
			}
			p.running.Add(1)
			t0 := time.Now()
			v, err := safeRun(ctx, u)
			p.running.Add(-1)
			results[i].Value = v
			results[i].Err = err
			results[i].Elapsed = time.Since(t0)
			r.metrics.ObserveUnit(r.task, err, results[i].Elapsed)
			if err != nil {
				p.failed.Add(1)
				r.log.Warn("unit failed", "unit", u.Name, "error", err)
			} else {
				p.completed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	close(stop)
	<-ticked

	r.log.Info("all units finished",
		"completed", p.completed.Load(),
		"error", p.failed.Load(),
		"total", len(units),
		"elapsed", time.Since(start).String(),
	)
	return results
}

func (r *Runner) logProgress(p *progress, start time.Time) {
	completed, failed, running := p.completed.Load(), p.failed.Load(), p.running.Load()
	r.log.Info("units progress",
		"completed", completed,
		"running", running,
		"pending", p.total.Load()-completed-failed-running,
		"error", failed,
		"total", p.total.Load(),
		"elapsed", time.Since(start).String(),
	)
}

func safeRun[T any](ctx context.Context, u Unit[T]) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unit %q panicked: %v\n%s", u.Name, rec, debug.Stack())
		}
	}()
	if u.Run == nil {
		return v, fmt.Errorf("unit %q has no Run func", u.Name)
	}
	return u.Run(ctx)
}

// Err joins the errors of all failed results, nil when every unit succeeded.
func Err[T any](results []Result[T]) error {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return errors.Join(errs...)
}
