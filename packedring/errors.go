package packedring

import (
	"errors"
	"fmt"
)

var (
	// ErrValueOutOfRange is matched by *ValueRangeError.
	ErrValueOutOfRange = errors.New("packedring: value exceeds 24 bits")
	// ErrIndexOutOfRange is matched by *IndexRangeError.
	ErrIndexOutOfRange = errors.New("packedring: index out of range")
	// ErrCorruptSnapshot is returned when a snapshot fails validation.
	ErrCorruptSnapshot = errors.New("packedring: corrupt snapshot")
	// ErrUnsupportedVersion is returned for a snapshot written by a newer format.
	ErrUnsupportedVersion = errors.New("packedring: unsupported snapshot version")
)

// ValueRangeError reports a value that does not fit in a slot.
type ValueRangeError struct {
	Value uint32
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("packedring: value %#x exceeds 0xFFFFFF", e.Value)
}

func (e *ValueRangeError) Is(target error) bool { return target == ErrValueOutOfRange }

// IndexRangeError reports a logical index outside [0, Len).
type IndexRangeError struct {
	Index int
	Len   int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("packedring: index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }
