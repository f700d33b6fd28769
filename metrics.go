package lshnn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; a
// Prometheus-backed implementation ships with the package.
type MetricsCollector interface {
	// RecordBuild is called after each index construction attempt.
	// duration is the total time taken, err is nil if successful.
	RecordBuild(duration time.Duration, err error)

	// RecordQuery is called after each query operation.
	// op names the operation (e.g. "FindKNearest").
	RecordQuery(op string, duration time.Duration, err error)

	// RecordCalibration is called after each probe calibration run.
	// evaluations is the number of precision evaluations performed.
	RecordCalibration(evaluations int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(time.Duration, error)            {}
func (NoopMetricsCollector) RecordQuery(string, time.Duration, error)    {}
func (NoopMetricsCollector) RecordCalibration(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	BuildTotalNanos   atomic.Int64
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryTotalNanos   atomic.Int64
	CalibrationCount  atomic.Int64
	CalibrationErrors atomic.Int64
	CalibrationEvals  atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(op string, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordCalibration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCalibration(evaluations int, duration time.Duration, err error) {
	b.CalibrationCount.Add(1)
	b.CalibrationEvals.Add(int64(evaluations))
	if err != nil {
		b.CalibrationErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		QueryCount:        b.QueryCount.Load(),
		QueryErrors:       b.QueryErrors.Load(),
		QueryAvgNanos:     b.getAvgQueryNanos(),
		CalibrationCount:  b.CalibrationCount.Load(),
		CalibrationErrors: b.CalibrationErrors.Load(),
		CalibrationEvals:  b.CalibrationEvals.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount        int64
	BuildErrors       int64
	QueryCount        int64
	QueryErrors       int64
	QueryAvgNanos     int64
	CalibrationCount  int64
	CalibrationErrors int64
	CalibrationEvals  int64
}
