// Package uint24 packs unsigned integers below 2^24 into 3 little-endian bytes.
//
// Layout of one slot:
//
//	b[0] = v & 0xFF
//	b[1] = (v >> 8) & 0xFF
//	b[2] = (v >> 16) & 0xFF
//
// The layout is bit-exact and shared by every buffer that stores packed
// values, so serialized storage can be inspected byte by byte.
package uint24
