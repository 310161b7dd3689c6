package holearray

import (
	"bytes"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/refinedsets/metrics"
	"github.com/hupe1980/refinedsets/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromValues[T any](vals ...T) *Array[T] {
	a := New[T]()
	for _, v := range vals {
		a.Push(v)
	}
	return a
}

func TestScenario(t *testing.T) {
	a := fromValues("a", "b", "c")

	a.MarkHole(1)
	assert.Equal(t, []string{"a", "c"}, slices.Collect(a.Valid()))

	a.Compact()
	assert.Equal(t, []string{"a", "c"}, slices.Collect(a.Valid()))
	assert.Equal(t, 2, a.Len())
}

func TestNew(t *testing.T) {
	a := New[int]()
	assert.Zero(t, a.Len())
	assert.Empty(t, slices.Collect(a.Valid()))

	var zero Array[int]
	zero.Push(1)
	zero.MarkHole(0)
	zero.Compact()
	assert.Zero(t, zero.Len())

	pre := New[int](WithCapacity(64))
	assert.Equal(t, 64, cap(pre.slots))
	assert.Zero(t, pre.Len())
}

func TestMarkHoleKeepsIndices(t *testing.T) {
	a := fromValues(10, 20, 30, 40)
	a.MarkHole(0)
	a.MarkHole(2)

	assert.Equal(t, 4, a.Len(), "marking never shifts")
	assert.Equal(t, 2, a.HoleCount())
	assert.Equal(t, 2, a.ValidCount())

	v, ok := a.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 20, v)
	v, ok = a.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 40, v)

	_, ok = a.Get(2)
	assert.False(t, ok)
	assert.True(t, a.IsHole(0))
	assert.False(t, a.IsHole(1))
}

func TestMarkHoleTolerant(t *testing.T) {
	for _, idx := range []int{-1, 3, 4, 1 << 30} {
		a := fromValues("x", "y", "z")
		a.MarkHole(1)
		before := *a
		beforeSlots := slices.Clone(a.slots)

		assert.NotPanics(t, func() { a.MarkHole(idx) })

		assert.Equal(t, before.holes, a.holes, "index %d", idx)
		assert.Equal(t, beforeSlots, a.slots, "index %d", idx)
	}
}

func TestMarkHoleTwice(t *testing.T) {
	a := fromValues(1, 2, 3)
	a.MarkHole(1)
	a.MarkHole(1)
	assert.Equal(t, 1, a.HoleCount())
	assert.Equal(t, []int{1, 3}, a.Values())
}

func TestGetOutOfRange(t *testing.T) {
	a := fromValues(1)
	_, ok := a.Get(-1)
	assert.False(t, ok)
	_, ok = a.Get(1)
	assert.False(t, ok)
	assert.False(t, a.IsHole(5))
}

func TestCompact(t *testing.T) {
	a := fromValues(0, 1, 2, 3, 4, 5, 6, 7)
	for _, i := range []int{0, 3, 4, 7} {
		a.MarkHole(i)
	}

	a.Compact()

	assert.Equal(t, []int{1, 2, 5, 6}, a.Values())
	assert.Equal(t, 4, a.Len())
	assert.Zero(t, a.HoleCount())
	for i, want := range []int{1, 2, 5, 6} {
		v, ok := a.Get(i)
		require.True(t, ok)
		assert.Equal(t, want, v, "indices are renumbered")
	}

	// Compacting a dense array changes nothing.
	snapshot := slices.Clone(a.slots)
	a.Compact()
	assert.Equal(t, snapshot, a.slots)
}

func TestCompactReleasesStorage(t *testing.T) {
	a := New[int]()
	for i := range 1000 {
		a.Push(i)
	}
	for i := 10; i < 1000; i++ {
		a.MarkHole(i)
	}

	a.Compact()
	assert.Equal(t, 10, a.Len())
	assert.Equal(t, 10, cap(a.slots), "mostly-hole arrays move to right-sized storage")
}

func TestCompactInPlaceClearsTail(t *testing.T) {
	a := fromValues(&struct{}{}, &struct{}{}, &struct{}{}, &struct{}{})
	a.MarkHole(0)

	a.Compact()
	require.Equal(t, 3, a.Len())
	tail := a.slots[:4]
	assert.Nil(t, tail[3].value, "vacated slot must not pin its value")
}

func TestCompactEverything(t *testing.T) {
	a := fromValues("a", "b")
	a.MarkHole(0)
	a.MarkHole(1)
	a.Compact()

	assert.Zero(t, a.Len())
	assert.Empty(t, a.Values())

	a.Push("c")
	assert.Equal(t, []string{"c"}, a.Values())
}

func TestValidRestartable(t *testing.T) {
	a := fromValues(1, 2, 3)
	a.MarkHole(0)

	seq := a.Valid()
	assert.Equal(t, []int{2, 3}, slices.Collect(seq))
	assert.Equal(t, []int{2, 3}, slices.Collect(seq), "second pass starts over")

	for v := range seq {
		assert.Equal(t, 2, v)
		break
	}
	assert.Equal(t, 2, a.ValidCount(), "iteration does not mutate")
}

func TestAll(t *testing.T) {
	a := fromValues("a", "b", "c", "d")
	a.MarkHole(1)

	var idx []int
	var vals []string
	for i, v := range a.All() {
		idx = append(idx, i)
		vals = append(vals, v)
	}
	assert.Equal(t, []int{0, 2, 3}, idx)
	assert.Equal(t, []string{"a", "c", "d"}, vals)
}

func TestHolesProperty(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for round := 0; round < 50; round++ {
		n := rng.Intn(200)
		a := New[int]()
		for i := 0; i < n; i++ {
			a.Push(i * 10)
		}

		marked := map[int]bool{}
		for j := 0; j < n/2+1; j++ {
			i := rng.Intn(n+10) - 5 // some indices out of range on both sides
			a.MarkHole(i)
			if i >= 0 && i < n {
				marked[i] = true
			}
		}

		var want []int
		for i := 0; i < n; i++ {
			if !marked[i] {
				want = append(want, i*10)
			}
		}

		got := slices.Collect(a.Valid())
		require.Equal(t, len(want), len(got), "round %d", round)
		if len(want) > 0 {
			require.Equal(t, want, got, "round %d", round)
		}
		require.Equal(t, len(marked), a.HoleCount())

		a.Compact()
		require.Equal(t, len(want), a.Len())
		require.Equal(t, got, slices.Collect(a.Valid()))
	}
}

func TestHolesBitmap(t *testing.T) {
	a := fromValues(1, 2, 3, 4, 5)
	assert.True(t, a.Holes().IsEmpty())

	a.MarkHole(1)
	a.MarkHole(4)
	assert.Equal(t, []uint32{1, 4}, a.Holes().ToArray())

	b := fromValues(1, 2, 3, 4, 5)
	b.MarkHoles(a.Holes())
	assert.Equal(t, a.Values(), b.Values())

	c := fromValues("x", "y")
	c.MarkHoles(roaring.BitmapOf(0, 7, 100))
	assert.Equal(t, []string{"y"}, c.Values())

	assert.NotPanics(t, func() { c.MarkHoles(nil) })
}

func TestObservability(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	var m metrics.Basic

	a := New[int](WithLogger(logger), WithMetrics(&m))
	a.Push(1)
	a.Push(2)
	a.Push(3)
	a.MarkHole(0)
	a.Compact()
	a.Compact() // nothing to reclaim

	st := m.Stats()
	assert.Equal(t, int64(1), st.HoleCompactCount)
	assert.Equal(t, int64(1), st.HolesReclaimed)
	assert.Contains(t, buf.String(), "holes compacted")
	assert.Contains(t, buf.String(), "component=holearray")
}

func TestBitmapIndex(t *testing.T) {
	idx, ok := bitmapIndex(0)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), idx)

	_, ok = bitmapIndex(-1)
	assert.False(t, ok)

	if strconv.IntSize < 64 {
		t.Skip("int cannot exceed math.MaxUint32")
	}
	last := int64(math.MaxUint32)
	idx, ok = bitmapIndex(int(last))
	assert.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), idx)

	_, ok = bitmapIndex(int(last + 1))
	assert.False(t, ok, "must not wrap to 0")
}
