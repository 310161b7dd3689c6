// Package holearray provides a dense array whose elements can be marked as
// holes (tombstones) in O(1) without shifting other indices, and later
// compacted away in a single O(n) pass.
//
// Index stability:
//   - MarkHole never moves any element; every index stays valid.
//   - Compact removes all holes and renumbers the survivors 0..n-1,
//     invalidating every index held before the call.
//
// MarkHole is deliberately tolerant: an out-of-range index or an index that
// is already a hole is ignored, so callers need not track exact bounds.
//
// Holes can be exported to and imported from a roaring bitmap, which is the
// set representation the set engine works with.
//
// An Array is not safe for concurrent use.
package holearray
