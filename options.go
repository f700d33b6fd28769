package lshnn

import "log/slog"

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Index constructor behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring
// construction, queries and calibration.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lshnn.BasicMetricsCollector{}
//	ix, _ := lshnn.NewIndex(ps, params, lshnn.WithMetricsCollector(metrics))
//	// ... query ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := lshnn.NewJSONLogger(slog.LevelInfo)
//	ix, _ := lshnn.NewIndex(ps, params, lshnn.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
