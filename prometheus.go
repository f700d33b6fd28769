package lshnn

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements MetricsCollector on top of Prometheus
// counters and histograms.
type PrometheusCollector struct {
	builds           *prometheus.CounterVec
	buildDuration    prometheus.Histogram
	queries          *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	calibrations     *prometheus.CounterVec
	calibrationEvals prometheus.Histogram
}

// NewPrometheusCollector creates a PrometheusCollector and registers its
// metrics with reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lshnn_builds_total",
			Help: "Index constructions by status.",
		}, []string{"status"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lshnn_build_duration_seconds",
			Help:    "Index construction latency.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lshnn_queries_total",
			Help: "Queries by operation and status.",
		}, []string{"op", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lshnn_query_duration_seconds",
			Help:    "Query latency by operation.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"op"}),
		calibrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lshnn_calibrations_total",
			Help: "Probe calibration runs by status.",
		}, []string{"status"}),
		calibrationEvals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lshnn_calibration_evaluations",
			Help:    "Precision evaluations per calibration run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	for _, m := range []prometheus.Collector{
		c.builds, c.buildDuration, c.queries, c.queryDuration,
		c.calibrations, c.calibrationEvals,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordBuild implements MetricsCollector.
func (c *PrometheusCollector) RecordBuild(duration time.Duration, err error) {
	c.builds.WithLabelValues(status(err)).Inc()
	c.buildDuration.Observe(duration.Seconds())
}

// RecordQuery implements MetricsCollector.
func (c *PrometheusCollector) RecordQuery(op string, duration time.Duration, err error) {
	c.queries.WithLabelValues(op, status(err)).Inc()
	c.queryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCalibration implements MetricsCollector.
func (c *PrometheusCollector) RecordCalibration(evaluations int, duration time.Duration, err error) {
	c.calibrations.WithLabelValues(status(err)).Inc()
	c.calibrationEvals.Observe(float64(evaluations))
}
