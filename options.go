package ljpw

import (
	"github.com/hupe1980/ljpw/codec"
)

type options struct {
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	parallelism      int
}

// Option configures Space construction.
type Option func(*options)

// WithCodec configures the codec used when Open decodes a dataset file.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures the logger used for operation diagnostics.
// Pass nil to fall back to the default text logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = collector
	}
}

// WithParallelism sets the number of goroutines used for brute-force
// distance scans over large datasets. Values <= 1 keep scans
// single-threaded. Results are identical either way; datasets below the
// internal chunking threshold are always scanned serially.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}
