package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/envutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

// Metrics is the process-wide registry. A nil *Metrics is valid and records
// nothing, so callers never check Enabled themselves.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *GaugeVec
	upserts      *CounterVec
	units        *CounterVec
	unitLatency  *HistogramVec
	statuses     *CounterVec
	statsRebuild *HistogramVec
	migrated     *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool { return envutil.GetEnvAsBool("METRICS_ENABLED", false, nil) }

func Current() *Metrics { return instance }

// Init builds the registry once when METRICS_ENABLED is set; otherwise it
// returns nil.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		log.Info("metrics enabled")
	})
	return instance
}

// NewMetrics builds an unregistered registry; tests use it directly.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("dhd_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("dhd_api_request_duration_seconds", "API latency by method/route.", []string{"method", "route"}, nil),
		apiInflight: NewGaugeVec("dhd_api_inflight_requests", "In-flight API requests.", nil),
		upserts:     NewCounterVec("dhd_upserts_total", "Upsert outcomes by entity kind.", []string{"kind", "outcome"}),
		units:       NewCounterVec("dhd_task_units_total", "Task runner units by outcome.", []string{"task", "outcome"}),
		unitLatency: NewHistogramVec("dhd_task_unit_duration_seconds", "Task runner unit latency.", []string{"task"}, nil),
		statuses:    NewCounterVec("dhd_status_evaluations_total", "Status evaluations by source and result.", []string{"source", "status"}),
		statsRebuild: NewHistogramVec("dhd_stats_rebuild_duration_seconds", "Insight stats recomputation latency.", nil,
			[]float64{0.1, 0.5, 1, 5, 15, 30, 60, 120}),
		migrated: NewCounterVec("dhd_media_migrated_total", "Media migration outcomes by kind.", []string{"kind", "outcome"}),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	addr = strings.TrimSpace(addr)
	if m == nil || addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.upserts, m.units, m.unitLatency,
		m.statuses, m.statsRebuild, m.migrated,
	}
	for _, iw := range writers {
		if err := iw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(strings.ToUpper(method), route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), strings.ToUpper(method), route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// IncUpsert counts one upsert; outcome is inserted, updated, unchanged or failed.
func (m *Metrics) IncUpsert(kind, outcome string) {
	if m != nil {
		m.upserts.Inc(kind, outcome)
	}
}

func (m *Metrics) ObserveUnit(task string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.units.Inc(task, outcome)
	m.unitLatency.Observe(dur.Seconds(), task)
}

func (m *Metrics) IncStatus(source, status string) {
	if m != nil {
		m.statuses.Inc(source, status)
	}
}

func (m *Metrics) ObserveStatsRebuild(dur time.Duration) {
	if m != nil {
		m.statsRebuild.Observe(dur.Seconds())
	}
}

func (m *Metrics) IncMigrated(kind, outcome string) {
	if m != nil {
		m.migrated.Inc(kind, outcome)
	}
}

// Upserts exposes the upsert counter for assertions.
func (m *Metrics) Upserts() *CounterVec {
	if m == nil {
		return nil
	}
	return m.upserts
}
