package mem

import "log/slog"

const (
	// DefaultAlignCeiling is the size above which aligned allocation
	// falls back to exact sizing even when alignment is enabled.
	// Rounding a multi-megabyte block to the next power of two can
	// nearly double its footprint, so large blocks are left exact.
	DefaultAlignCeiling = 1 << 20

	// defaultQueueDepth is the reclaim event channel buffer.
	defaultQueueDepth = 128
)

// Options configures an Arena. All fields are read once by New and are
// immutable for the life of the arena.
//
// Use DefaultOptions() for production-ready defaults.
type Options struct {
	// Tracking enables the allocation record map and aggregate
	// counters. When disabled, SizeOf always reports unknown and
	// Stats totals stay zero.
	// Default: true
	Tracking bool

	// Alignment enables power-of-two rounding in AllocAligned and
	// ReallocAligned for sizes up to AlignCeiling.
	// Default: true
	Alignment bool

	// AlignCeiling is the largest size that is still rounded up when
	// Alignment is enabled.
	// Default: DefaultAlignCeiling
	AlignCeiling int

	// QueueDepth is the reclaim event channel buffer size.
	// Default: 128
	QueueDepth int

	// Logger receives reclamation diagnostics at debug level.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns the standard production configuration:
// tracking on, alignment on with the default ceiling.
func DefaultOptions() Options {
	return Options{
		Tracking:     true,
		Alignment:    true,
		AlignCeiling: DefaultAlignCeiling,
		QueueDepth:   defaultQueueDepth,
	}
}

func (o Options) normalized() Options {
	if o.AlignCeiling <= 0 {
		o.AlignCeiling = DefaultAlignCeiling
	}
	if o.QueueDepth <= 0 {
		o.QueueDepth = defaultQueueDepth
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
