package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "school"

// MetricsSnapshot is a point-in-time view of process counters for the health endpoint.
type MetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// running keeps a count and a nanosecond total so snapshots can report averages
// without reading Prometheus collectors back.
type running struct {
	count uint64
	nanos uint64
}

func (r *running) add(d time.Duration) {
	atomic.AddUint64(&r.count, 1)
	atomic.AddUint64(&r.nanos, uint64(d.Nanoseconds()))
}

func (r *running) load() (uint64, float64) {
	n := atomic.LoadUint64(&r.count)
	if n == 0 {
		return 0, 0
	}
	return n, float64(atomic.LoadUint64(&r.nanos)) / float64(n) / float64(time.Millisecond)
}

// MetricsService owns a private Prometheus registry with HTTP, cache, database and finance
// collectors. All methods are safe on a nil receiver.
type MetricsService struct {
	handler http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	cacheLatency prometheus.Histogram
	cacheWrites  prometheus.Histogram
	cacheRatio   prometheus.Gauge
	dbDuration   *prometheus.HistogramVec
	reports      *prometheus.HistogramVec
	enrollments  *prometheus.CounterVec
	payslips     *prometheus.CounterVec
	exports      *prometheus.CounterVec

	hits     uint64
	misses   uint64
	requests running
	queries  running
}

// NewMetricsService registers the collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &MetricsService{
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency by route template.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route template and status.",
		}, []string{"method", "route", "status"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Report cache lookups by result.",
		}, []string{"result"}),
		cacheLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "cache", Name: "lookup_duration_seconds",
			Help: "Report cache lookup latency.", Buckets: prometheus.DefBuckets,
		}),
		cacheWrites: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "cache", Name: "write_duration_seconds",
			Help: "Report cache write latency.", Buckets: prometheus.DefBuckets,
		}),
		cacheRatio: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "cache", Name: "hit_ratio",
			Help: "Hits over lookups since start.",
		}),
		dbDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "db", Name: "query_duration_seconds",
			Help: "Database query latency by query name.", Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		reports: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "finance", Name: "report_duration_seconds",
			Help: "Time spent loading and computing finance reports.", Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "finance", Name: "enrollments_total",
			Help: "Applicant enrollments by outcome.",
		}, []string{"outcome"}),
		payslips: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "payroll", Name: "payslips_total",
			Help: "Payslip calculations by outcome.",
		}, []string{"outcome"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "finance", Name: "exports_total",
			Help: "Rendered report exports by format.",
		}, []string{"format"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, route, code).Inc()
	m.requests.add(duration)
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
		atomic.AddUint64(&m.hits, 1)
	} else {
		atomic.AddUint64(&m.misses, 1)
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheRatio.Set(m.hitRatio())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.Observe(duration.Seconds())
}

// ObserveDBQuery records a named database query.
func (m *MetricsService) ObserveDBQuery(query string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(query).Observe(duration.Seconds())
	m.queries.add(duration)
}

// ObserveReport records how long a finance report took to build.
func (m *MetricsService) ObserveReport(report string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(report).Observe(duration.Seconds())
}

// IncEnrollment counts an enrollment attempt by outcome.
func (m *MetricsService) IncEnrollment(outcome string) {
	if m == nil {
		return
	}
	m.enrollments.WithLabelValues(outcome).Inc()
}

// IncPayslip counts a payslip calculation by outcome.
func (m *MetricsService) IncPayslip(outcome string) {
	if m == nil {
		return
	}
	m.payslips.WithLabelValues(outcome).Inc()
}

// IncExport counts a rendered export.
func (m *MetricsService) IncExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// Snapshot returns aggregated process counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests, avgRequest := m.requests.load()
	queries, avgQuery := m.queries.load()
	return MetricsSnapshot{
		CacheHitRatio:            m.hitRatio(),
		CacheHits:                atomic.LoadUint64(&m.hits),
		CacheMisses:              atomic.LoadUint64(&m.misses),
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequest,
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: avgQuery,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func (m *MetricsService) hitRatio() float64 {
	hits := atomic.LoadUint64(&m.hits)
	total := hits + atomic.LoadUint64(&m.misses)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
