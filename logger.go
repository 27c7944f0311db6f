package ljpw

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with ljpw-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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

// WithConcept adds a concept name field to the logger.
func (l *Logger) WithConcept(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("concept", name),
	}
}

// WithK adds a k (neighbor or cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDomain adds a domain field to the logger.
func (l *Logger) WithDomain(domain string) *Logger {
	return &Logger{
		Logger: l.Logger.With("domain", domain),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogSearch logs a nearest-neighbor query.
func (l *Logger) LogSearch(k, candidates int, duration time.Duration, err error) {
	if err != nil {
		l.Error("search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.Debug("search completed",
			"k", k,
			"candidates", candidates,
			"duration", duration,
		)
	}
}

// LogCluster logs a clustering run.
func (l *Logger) LogCluster(k, iterations int, converged bool, duration time.Duration, err error) {
	if err != nil {
		l.Error("clustering failed",
			"k", k,
			"error", err,
		)
	} else {
		l.Debug("clustering completed",
			"k", k,
			"iterations", iterations,
			"converged", converged,
			"duration", duration,
		)
	}
}
