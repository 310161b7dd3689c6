package holearray

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/refinedsets/internal/logging"
	"github.com/hupe1980/refinedsets/metrics"
)

// slot is either an occupied value or a hole.
type slot[T any] struct {
	value    T
	occupied bool
}

// Array is a sequence of values with tombstone deletion.
//
// The zero value is an empty array, ready to use.
type Array[T any] struct {
	slots []slot[T]
	holes int

	log       *logging.Logger
	collector metrics.Collector
}

// New creates an empty Array.
func New[T any](optFns ...Option) *Array[T] {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	a := &Array[T]{collector: o.collector}
	if o.capacity > 0 {
		a.slots = make([]slot[T], 0, o.capacity)
	}
	if o.logger != nil {
		a.log = logging.New(o.logger).WithComponent("holearray")
	}
	return a
}

// Len returns the number of slots, holes included.
func (a *Array[T]) Len() int { return len(a.slots) }

// HoleCount returns the number of holes.
func (a *Array[T]) HoleCount() int { return a.holes }

// ValidCount returns the number of occupied slots.
func (a *Array[T]) ValidCount() int { return len(a.slots) - a.holes }

// Push appends v as an occupied slot at index Len().
func (a *Array[T]) Push(v T) {
	a.slots = append(a.slots, slot[T]{value: v, occupied: true})
}

// MarkHole turns slot i into a hole. It does nothing if i is out of range or
// slot i is already a hole.
func (a *Array[T]) MarkHole(i int) {
	if i < 0 || i >= len(a.slots) || !a.slots[i].occupied {
		return
	}
	a.slots[i] = slot[T]{} // drop the value so it can be collected
	a.holes++
}

// IsHole reports whether slot i is a hole. Out-of-range indices report false.
func (a *Array[T]) IsHole(i int) bool {
	return i >= 0 && i < len(a.slots) && !a.slots[i].occupied
}

// Get returns the value in slot i and whether the slot is occupied.
func (a *Array[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(a.slots) || !a.slots[i].occupied {
		var zero T
		return zero, false
	}
	return a.slots[i].value, true
}

// Compact removes all holes, keeping the occupied values in their relative
// order and renumbering them 0..ValidCount()-1. All previously held indices
// become invalid.
func (a *Array[T]) Compact() {
	if a.holes == 0 {
		return
	}
	before := len(a.slots)
	after := before - a.holes

	// Mostly holes: reallocate to exactly after slots.
	inPlace := after > cap(a.slots)/2
	dst := a.slots[:0]
	if !inPlace {
		dst = make([]slot[T], 0, after)
	}
	for _, s := range a.slots {
		if s.occupied {
			dst = append(dst, s)
		}
	}
	if inPlace {
		clear(a.slots[after:before])
	}

	a.slots = dst
	a.holes = 0

	if a.log != nil {
		a.log.LogHoleCompact(before, after)
	}
	if a.collector != nil {
		a.collector.RecordHoleCompact(before, after)
	}
}

// Valid returns an iterator over the occupied values in slot order.
// Each call starts a fresh pass. The array must not be mutated during iteration.
func (a *Array[T]) Valid() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range a.slots {
			if a.slots[i].occupied && !yield(a.slots[i].value) {
				return
			}
		}
	}
}

// All returns an iterator over (index, value) pairs of occupied slots.
func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range a.slots {
			if a.slots[i].occupied && !yield(i, a.slots[i].value) {
				return
			}
		}
	}
}

// Values returns the occupied values in slot order as a new slice.
func (a *Array[T]) Values() []T {
	out := make([]T, 0, a.ValidCount())
	for v := range a.Valid() {
		out = append(out, v)
	}
	return out
}

// Holes returns the indices of all holes as a new bitmap.
//
// Bitmap indices are uint32: holes at index math.MaxUint32+1 or above are
// left out, and Encode rejects such arrays.
func (a *Array[T]) Holes() *roaring.Bitmap {
	bm := roaring.New()
	if a.holes == 0 {
		return bm
	}
	for i := range a.slots {
		idx, ok := bitmapIndex(i)
		if !ok {
			break
		}
		if !a.slots[i].occupied {
			bm.Add(idx)
		}
	}
	return bm
}

// bitmapIndex converts a slot index to a bitmap index.
func bitmapIndex(i int) (uint32, bool) {
	if i < 0 || int64(i) > math.MaxUint32 {
		return 0, false
	}
	return uint32(i), true
}

// MarkHoles marks every index in bm as a hole, with MarkHole's tolerance for
// out-of-range and repeated indices. A nil bitmap is ignored.
func (a *Array[T]) MarkHoles(bm *roaring.Bitmap) {
	if bm == nil {
		return
	}
	it := bm.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i >= len(a.slots) {
			return // iteration is ascending; the rest is out of range too
		}
		a.MarkHole(i)
	}
}
