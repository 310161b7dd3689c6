package packedring

import (
	"fmt"
	"iter"

	"github.com/hupe1980/refinedsets/internal/conv"
	"github.com/hupe1980/refinedsets/internal/logging"
	"github.com/hupe1980/refinedsets/internal/uint24"
	"github.com/hupe1980/refinedsets/metrics"
)

// MaxValue is the largest value a Ring can hold.
const MaxValue = uint24.Max

// Ring is a circular buffer of 24-bit values packed 3 bytes per slot.
//
// The zero value is an empty ring with capacity 0, ready to use.
type Ring struct {
	data   []byte // len(data) is always a multiple of uint24.Width
	head   int    // slot of logical index 0
	length int

	log       *logging.Logger
	collector metrics.Collector
}

// New creates a ring with room for slots values before the first grow.
// slots may be 0. A negative slots panics.
func New(slots int, optFns ...Option) *Ring {
	n, err := conv.MulInt(slots, uint24.Width)
	if err != nil {
		panic(fmt.Errorf("packedring: invalid slot count %d: %w", slots, err))
	}

	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	r := &Ring{
		data:      make([]byte, n),
		collector: o.collector,
	}
	if o.logger != nil {
		r.log = logging.New(o.logger).WithComponent("packedring")
	}
	return r
}

// FromSlice creates a ring holding values in order, with capacity len(values).
// It panics like Push if a value exceeds MaxValue.
func FromSlice(values []uint32, optFns ...Option) *Ring {
	r := New(len(values), optFns...)
	for _, v := range values {
		r.Push(v)
	}
	return r
}

// Len returns the number of values in the ring.
func (r *Ring) Len() int { return r.length }

// Cap returns the number of slots in the storage.
func (r *Ring) Cap() int { return len(r.data) / uint24.Width }

// Head returns the slot holding logical index 0.
func (r *Ring) Head() int { return r.head }

// Bytes returns the physical storage. Logical index i occupies bytes
// [s*3, s*3+3) with s = (Head()+i) % Cap(). The slice aliases the ring and is
// only valid until the next Push, Compact or UnmarshalBinary; callers must not
// modify it.
func (r *Ring) Bytes() []byte { return r.data }

// slot returns the byte offset of logical index i.
func (r *Ring) slot(i int) int {
	return ((r.head + i) % r.Cap()) * uint24.Width
}

// Push appends v after the newest value.
//
// If the ring is full (including capacity 0) the storage grows to
// max(Cap(),1)*2 slots first; growth rewrites the live values in logical
// order starting at slot 0 and resets Head to 0.
//
// Push panics with a *ValueRangeError if v exceeds MaxValue.
func (r *Ring) Push(v uint32) {
	if !uint24.Valid(v) {
		panic(&ValueRangeError{Value: v})
	}
	if r.length == r.Cap() {
		r.grow()
	}
	uint24.Put(r.data[r.slot(r.length):], v)
	r.length++
}

// TryPush is Push returning a *ValueRangeError instead of panicking.
func (r *Ring) TryPush(v uint32) error {
	if !uint24.Valid(v) {
		return &ValueRangeError{Value: v}
	}
	r.Push(v)
	return nil
}

func (r *Ring) grow() {
	oldCap := r.Cap()
	newCap := max(oldCap, 1) * 2

	r.relocate(newCap)

	if r.log != nil {
		r.log.LogGrow(oldCap, newCap, r.length)
	}
	if r.collector != nil {
		r.collector.RecordGrow(oldCap, newCap)
	}
}

// relocate replaces the storage with newCap slots holding the live values in
// logical order from slot 0. newCap must be >= r.length.
func (r *Ring) relocate(newCap int) {
	data := make([]byte, newCap*uint24.Width)

	if r.length > 0 {
		// The live region is at most two contiguous runs: [head, end) and,
		// when it wraps, [0, rest).
		start := r.head * uint24.Width
		end := start + r.length*uint24.Width
		if end <= len(r.data) {
			copy(data, r.data[start:end])
		} else {
			n := copy(data, r.data[start:])
			copy(data[n:], r.data[:end-len(r.data)])
		}
	}

	r.data = data
	r.head = 0
}

// Shift removes and returns the oldest value.
// It returns (0, false) when the ring is empty.
func (r *Ring) Shift() (uint32, bool) {
	if r.length == 0 {
		return 0, false
	}
	v := uint24.Get(r.data[r.head*uint24.Width:])
	r.head = (r.head + 1) % r.Cap()
	r.length--
	return v, true
}

// Pop removes and returns the oldest value, exactly like Shift.
//
// Pop takes from the front, not the back: callers treat the ring as a FIFO
// under either name. It returns (0, false) when the ring is empty.
func (r *Ring) Pop() (uint32, bool) {
	return r.Shift()
}

// Get returns the value at logical index i.
// It panics with an *IndexRangeError unless 0 <= i < Len().
func (r *Ring) Get(i int) uint32 {
	if i < 0 || i >= r.length {
		panic(&IndexRangeError{Index: i, Len: r.length})
	}
	return uint24.Get(r.data[r.slot(i):])
}

// TryGet is Get returning an *IndexRangeError instead of panicking.
func (r *Ring) TryGet(i int) (uint32, error) {
	if i < 0 || i >= r.length {
		return 0, &IndexRangeError{Index: i, Len: r.length}
	}
	return uint24.Get(r.data[r.slot(i):]), nil
}

// ToSlice returns the values in logical order as a new slice.
// The ring is not modified.
func (r *Ring) ToSlice() []uint32 {
	out := make([]uint32, r.length)
	for i := range out {
		out[i] = uint24.Get(r.data[r.slot(i):])
	}
	return out
}

// AppendTo appends the values in logical order to dst.
func (r *Ring) AppendTo(dst []uint32) []uint32 {
	for i := 0; i < r.length; i++ {
		dst = append(dst, uint24.Get(r.data[r.slot(i):]))
	}
	return dst
}

// All returns an iterator over (logical index, value) pairs, oldest first.
// The ring must not be mutated during iteration.
func (r *Ring) All() iter.Seq2[int, uint32] {
	return func(yield func(int, uint32) bool) {
		for i := 0; i < r.length; i++ {
			if !yield(i, uint24.Get(r.data[r.slot(i):])) {
				return
			}
		}
	}
}

// Compact reallocates the storage to exactly Len() slots in logical order and
// resets Head to 0. Compacting an already compact ring is a no-op.
func (r *Ring) Compact() {
	oldCap := r.Cap()
	if r.head == 0 && oldCap == r.length {
		return
	}

	r.relocate(r.length)

	if r.log != nil {
		r.log.LogCompact(oldCap, r.length)
	}
	if r.collector != nil {
		r.collector.RecordCompact(oldCap, r.length)
	}
}

// Reset empties the ring and rewinds Head to 0, keeping the storage.
func (r *Ring) Reset() {
	r.head = 0
	r.length = 0
}
