// Package packedring provides a growable circular buffer of 24-bit unsigned
// integers stored at exactly 3 bytes per slot.
//
// Architecture:
//   - Storage: one contiguous []byte whose length is a multiple of 3. Each
//     3-byte group is a slot holding a little-endian value in [0, 2^24-1].
//   - Ring state: (head, length, capacity). Logical index i lives in slot
//     (head+i) mod capacity.
//   - Growth: a push into a full ring reallocates to max(capacity,1)*2 slots
//     and rewrites the live elements in logical order starting at slot 0.
//   - No automatic shrinking; Compact trims storage to exactly Len slots.
//
// Compared to a []uint32 the ring uses 25% less memory, which matters for the
// large index sets the set engine keeps resident.
//
// A Ring is not safe for concurrent use. It is owned by a single caller.
//
// Precondition violations (pushing a value above 0xFFFFFF, reading an index
// outside [0, Len)) panic with a *ValueRangeError or *IndexRangeError.
// TryPush and TryGet return those errors instead.
//
// # Binary Layout
//
// Bytes exposes the physical storage. Head and Cap give the state needed to
// walk it. MarshalBinary and AppendSnapshot produce a portable snapshot:
//
//	magic "PR24" | version u8 | head u32 | length u32 | capacity u32 | block
//
// where block is the storage bytes, optionally LZ4 or ZSTD compressed.
package packedring
