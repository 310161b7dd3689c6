// Package metrics collects counters about container resizes and snapshots.
package metrics

import "sync/atomic"

// Collector defines an interface for collecting container metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// A single Collector may be shared by many containers; implementations must
// be safe for concurrent use even though each container is not.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    grows prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordGrow(oldCap, newCap int) {
//	    p.grows.Inc()
//	}
type Collector interface {
	// RecordGrow is called after a ring reallocated its storage because a
	// push found it full. Capacities are in slots.
	RecordGrow(oldCap, newCap int)

	// RecordCompact is called after a ring was compacted to its length.
	RecordCompact(oldCap, newCap int)

	// RecordHoleCompact is called after a hole array dropped its holes.
	// before and after are slot counts.
	RecordHoleCompact(before, after int)

	// RecordSnapshot is called after a snapshot was encoded or decoded.
	// n is the encoded size in bytes.
	RecordSnapshot(n int, err error)
}

// Noop is a no-op implementation of Collector.
type Noop struct{}

func (Noop) RecordGrow(int, int)        {}
func (Noop) RecordCompact(int, int)     {}
func (Noop) RecordHoleCompact(int, int) {}
func (Noop) RecordSnapshot(int, error)  {}

// Basic provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type Basic struct {
	GrowCount        atomic.Int64
	GrowSlots        atomic.Int64 // slots added by growth
	CompactCount     atomic.Int64
	CompactSlots     atomic.Int64 // slots released by compaction
	HoleCompactCount atomic.Int64
	HolesReclaimed   atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotBytes    atomic.Int64
	SnapshotErrors   atomic.Int64
}

// RecordGrow implements Collector.
func (b *Basic) RecordGrow(oldCap, newCap int) {
	b.GrowCount.Add(1)
	b.GrowSlots.Add(int64(newCap - oldCap))
}

// RecordCompact implements Collector.
func (b *Basic) RecordCompact(oldCap, newCap int) {
	b.CompactCount.Add(1)
	b.CompactSlots.Add(int64(oldCap - newCap))
}

// RecordHoleCompact implements Collector.
func (b *Basic) RecordHoleCompact(before, after int) {
	b.HoleCompactCount.Add(1)
	b.HolesReclaimed.Add(int64(before - after))
}

// RecordSnapshot implements Collector.
func (b *Basic) RecordSnapshot(n int, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(int64(n))
}

// Stats returns a snapshot of current metrics.
func (b *Basic) Stats() Stats {
	return Stats{
		GrowCount:        b.GrowCount.Load(),
		GrowSlots:        b.GrowSlots.Load(),
		CompactCount:     b.CompactCount.Load(),
		CompactSlots:     b.CompactSlots.Load(),
		HoleCompactCount: b.HoleCompactCount.Load(),
		HolesReclaimed:   b.HolesReclaimed.Load(),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotBytes:    b.SnapshotBytes.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
	}
}

// Stats is a snapshot of Basic state.
type Stats struct {
	GrowCount        int64
	GrowSlots        int64
	CompactCount     int64
	CompactSlots     int64
	HoleCompactCount int64
	HolesReclaimed   int64
	SnapshotCount    int64
	SnapshotBytes    int64
	SnapshotErrors   int64
}

var (
	_ Collector = Noop{}
	_ Collector = (*Basic)(nil)
)
