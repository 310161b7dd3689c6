// Package refinedsets provides compact in-memory containers for large sets of
// small integers and sparse collections.
//
// The module is split into two containers:
//
//   - packedring: a growable FIFO ring of 24-bit unsigned values, packed
//     3 bytes per slot in little-endian order.
//   - holearray: a generic ordered array whose elements can be punched out
//     without shifting the survivors, with an explicit Compact step.
//
// # Quick Start
//
// Packed ring:
//
//	r := packedring.New(0)
//	r.Push(1)
//	r.Push(0xFFFFFF)
//	v, _ := r.Shift() // 1
//	r.Compact()       // storage trimmed to Len() slots
//
// Hole array:
//
//	a := holearray.New[string]()
//	a.Push("a")
//	a.Push("b")
//	a.MarkHole(0)
//	for v := range a.Valid() { ... } // "b"
//	a.Compact()                      // Len() == 1
//
// # Snapshots
//
// Both containers serialize to a self-describing byte layout. Ring
// snapshots keep the physical storage (head, length and capacity) and may be
// compressed with LZ4 or ZSTD:
//
//	b, _ := r.AppendSnapshot(nil, packedring.WithCompression(packedring.CompressionZSTD))
//	var restored packedring.Ring
//	_ = restored.UnmarshalBinary(b)
//
// Hole array snapshots store hole positions as a roaring bitmap and the
// occupied values through a codec.Codec:
//
//	b, _ := holearray.Encode(a, codec.GoJSON{})
//	a2, _ := holearray.Decode[string](b, codec.GoJSON{})
//
// # Observability
//
// Both containers accept an optional *slog.Logger and a metrics.Collector:
//
//	m := &metrics.Basic{}
//	r := packedring.New(0, packedring.WithLogger(slog.Default()), packedring.WithMetrics(m))
//
// Neither container is safe for concurrent use; callers synchronize access.
package refinedsets
