package holearray

import (
	"log/slog"

	"github.com/hupe1980/refinedsets/metrics"
)

type options struct {
	logger    *slog.Logger
	collector metrics.Collector
	capacity  int
}

// Option configures an Array.
type Option func(*options)

// WithLogger sets the logger used for compaction events (Debug level).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics configures a metrics collector for compaction and snapshot events.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithCapacity pre-sizes the slot storage for n pushes.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = max(n, 0)
	}
}
