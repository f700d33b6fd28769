package lshnn

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with lshnn-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogBuild logs an index construction.
func (l *Logger) LogBuild(points, dimension, tables int, err error) {
	if err != nil {
		l.Error("index construction failed",
			"points", points,
			"dimension", dimension,
			"tables", tables,
			"error", err,
		)
	} else {
		l.Info("index constructed",
			"points", points,
			"dimension", dimension,
			"tables", tables,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(op string, results int, err error) {
	if err != nil {
		l.Error("query failed",
			"op", op,
			"error", err,
		)
	} else {
		l.Debug("query completed",
			"op", op,
			"results", results,
		)
	}
}

// LogCalibration logs a probe calibration run.
func (l *Logger) LogCalibration(target float64, probes, evaluations int, err error) {
	if err != nil {
		l.Error("calibration failed",
			"target_precision", target,
			"evaluations", evaluations,
			"error", err,
		)
	} else {
		l.Info("calibration completed",
			"target_precision", target,
			"num_probes", probes,
			"evaluations", evaluations,
		)
	}
}
