package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Analysis Metrics
	ReportDuration     *prometheus.HistogramVec
	ReportErrorsTotal  *prometheus.CounterVec
	DatasetRowsLoaded  prometheus.Histogram
	DatasetLoadSeconds prometheus.Histogram

	// Cache Metrics
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	StatsCacheHitRatio prometheus.Gauge

	// Database Metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// NewCollector creates a collector registered with the default Prometheus registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered with reg.
// Tests pass a fresh prometheus.NewRegistry() so collectors can be built repeatedly.
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_duration_seconds",
				Help:      "Duration of report computation in seconds by report",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
			},
			[]string{"report"},
		),

		ReportErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_errors_total",
				Help:      "Total number of report-level errors by report and kind",
			},
			[]string{"report", "kind"},
		),

		DatasetRowsLoaded: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_rows_loaded",
				Help:      "Number of dataset rows loaded per request",
				Buckets:   []float64{10, 100, 1000, 5000, 10000, 50000, 100000, 500000},
			},
		),

		DatasetLoadSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Duration of dataset loads in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_hits_total",
				Help:      "Total number of report cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_misses_total",
				Help:      "Total number of report cache misses",
			},
		),

		StatsCacheHitRatio: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stats_cache_hit_ratio",
				Help:      "Cache hit ratio for report queries",
			},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordReportError increments the report error counter
func (c *Collector) RecordReportError(report, kind string) {
	c.ReportErrorsTotal.WithLabelValues(report, kind).Inc()
}

// RecordCacheLookup counts a cache hit or miss and refreshes the hit ratio gauge
func (c *Collector) RecordCacheLookup(hit bool) {
	if hit {
		c.CacheHitsTotal.Inc()
		c.cacheHits.Add(1)
	} else {
		c.CacheMissesTotal.Inc()
		c.cacheMisses.Add(1)
	}

	hits := float64(c.cacheHits.Load())
	total := hits + float64(c.cacheMisses.Load())
	if total > 0 {
		c.StatsCacheHitRatio.Set(hits / total)
	}
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}
