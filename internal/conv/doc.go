// Package conv provides checked integer conversions for binary headers.
//
// Snapshot headers carry counts as little-endian uint32. Decoding them into
// Go ints (and encoding ints back) goes through this package so that a
// corrupted or hostile header surfaces as an error instead of a huge
// allocation or a silent wraparound.
//
// For conversions that are provably safe by construction (loop indices,
// values already bounded by a slot count), use direct casts.
package conv
