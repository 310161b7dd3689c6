package packedring

import (
	"log/slog"

	"github.com/hupe1980/refinedsets/internal/blockcodec"
	"github.com/hupe1980/refinedsets/metrics"
)

type options struct {
	logger    *slog.Logger
	collector metrics.Collector
}

// Option configures a Ring.
type Option func(*options)

// WithLogger sets the logger used for grow and compact events (Debug level)
// and snapshot failures (Error level). A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics configures a metrics collector for resize and snapshot events.
// Pass nil to disable metrics collection.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// Compression selects how the storage block of a snapshot is encoded.
type Compression = blockcodec.Type

const (
	// CompressionNone writes the storage bytes verbatim.
	CompressionNone = blockcodec.None
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 = blockcodec.LZ4
	// CompressionZSTD uses ZSTD compression.
	CompressionZSTD = blockcodec.ZSTD
)

type snapshotOptions struct {
	compression Compression
}

// SnapshotOption configures AppendSnapshot.
type SnapshotOption func(*snapshotOptions)

// WithCompression compresses the storage block. Compression is skipped
// whenever it saves less than 10%, so decoders must not assume the type.
func WithCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}
