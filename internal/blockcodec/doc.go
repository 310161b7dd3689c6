// Package blockcodec wraps a byte payload in a self-describing block with
// optional LZ4 or ZSTD compression.
//
// Block format (little-endian):
//
//	[rawLen uint32][storedLen uint32][type uint8][payload...]
//
// storedLen is the payload length on the wire. A block whose type is None
// carries the raw bytes verbatim. Compress falls back to None whenever the
// chosen algorithm does not save at least 10% of the input.
package blockcodec
