package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/shift-scheduler-api/internal/models"
)

// Oracle outcome labels.
const (
	OracleOutcomeOK       = "ok"
	OracleOutcomeEmpty    = "empty"
	OracleOutcomeDegraded = "degraded"
	OracleOutcomeDisabled = "disabled"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	generationRuns     *prometheus.CounterVec
	generationDuration prometheus.Histogram
	oracleOutcomes     *prometheus.CounterVec
	oracleSuggestions  *prometheus.CounterVec
	unfilledPositions  prometheus.Counter
	commits            *prometheus.CounterVec
	committed          prometheus.Counter
	notifications      *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	generationCount      uint64
	unfilledCount        uint64
	oracleDegradedCount  uint64
	committedCount       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	generationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_runs_total",
		Help: "Schedule generation runs by result",
	}, []string{"result"})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Wall time of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	})

	oracleOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_oracle_calls_total",
		Help: "Suggestion oracle calls by outcome",
	}, []string{"outcome"})

	oracleSuggestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_oracle_suggestions_total",
		Help: "Oracle suggestions by validation decision",
	}, []string{"decision"})

	unfilledPositions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_unfilled_positions_total",
		Help: "Position slots left unfilled after greedy fill",
	})

	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_commits_total",
		Help: "Schedule commits by result",
	}, []string{"result"})

	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_assignments_committed_total",
		Help: "Assignments persisted by commits",
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_notifications_total",
		Help: "Schedule publication notifications by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration,
		generationRuns, generationDuration, oracleOutcomes, oracleSuggestions, unfilledPositions, commits, committed, notifications,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		dbQueryDuration:    dbQueryDuration,
		generationRuns:     generationRuns,
		generationDuration: generationDuration,
		oracleOutcomes:     oracleOutcomes,
		oracleSuggestions:  oracleSuggestions,
		unfilledPositions:  unfilledPositions,
		commits:            commits,
		committed:          committed,
		notifications:      notifications,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordGeneration records the result of a generation run and its unfilled slot count.
func (m *MetricsService) RecordGeneration(result string, unfilled int, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationRuns.WithLabelValues(result).Inc()
	m.generationDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.generationCount, 1)
	if unfilled > 0 {
		m.unfilledPositions.Add(float64(unfilled))
		atomic.AddUint64(&m.unfilledCount, uint64(unfilled))
	}
}

// RecordOracle records an oracle call outcome with accepted and rejected suggestion counts.
func (m *MetricsService) RecordOracle(outcome string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.oracleOutcomes.WithLabelValues(outcome).Inc()
	if outcome == OracleOutcomeDegraded {
		atomic.AddUint64(&m.oracleDegradedCount, 1)
	}
	if accepted > 0 {
		m.oracleSuggestions.WithLabelValues("accepted").Add(float64(accepted))
	}
	if rejected > 0 {
		m.oracleSuggestions.WithLabelValues("rejected").Add(float64(rejected))
	}
}

// RecordCommit records a commit result and the number of persisted assignments.
func (m *MetricsService) RecordCommit(result string, inserted int) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
	if inserted > 0 {
		m.committed.Add(float64(inserted))
		atomic.AddUint64(&m.committedCount, uint64(inserted))
	}
}

// RecordNotification records the outcome of one notification dispatch.
func (m *MetricsService) RecordNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// Snapshot returns aggregated metrics suitable for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		GenerationRuns:           atomic.LoadUint64(&m.generationCount),
		UnfilledPositions:        atomic.LoadUint64(&m.unfilledCount),
		OracleDegraded:           atomic.LoadUint64(&m.oracleDegradedCount),
		AssignmentsCommitted:     atomic.LoadUint64(&m.committedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
