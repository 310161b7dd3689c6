package uint24

const (
	// Width is the number of bytes occupied by one packed value.
	Width = 3
	// Max is the largest value that fits in a slot.
	Max = 1<<24 - 1
)

// Valid reports whether v fits in 24 bits.
func Valid(v uint32) bool { return v <= Max }

// Put writes v into b[0:3]. Bits above 24 are discarded; callers check Valid first.
func Put(b []byte, v uint32) {
	_ = b[2] // bounds check hint to compiler
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Get decodes the value stored in b[0:3].
func Get(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// Append appends the 3-byte encoding of v to dst.
func Append(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16))
}
