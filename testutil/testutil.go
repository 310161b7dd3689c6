package testutil

import (
	"math/rand"
	"sync"
)

// maxUint24 mirrors the packed slot limit without importing internal packages.
const maxUint24 = 1<<24 - 1

// RNG is a seeded random source for reproducible container tests.
// It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset rewinds the RNG so it replays the same sequence.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the seed, for logging a failing property run.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Uint24 returns a pseudo-random value in [0, 2^24-1].
// One draw in eight is a boundary value (0, 1, 255, 256, 65535, 65536 or the maximum).
func (r *RNG) Uint24() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rand.Intn(8) == 0 {
		edges := [...]uint32{0, 1, 0xFF, 0x100, 0xFFFF, 0x10000, maxUint24}
		return edges[r.rand.Intn(len(edges))]
	}
	return uint32(r.rand.Int31n(maxUint24 + 1))
}

// Uint24s returns n values drawn with Uint24.
func (r *RNG) Uint24s(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = r.Uint24()
	}
	return out
}

// OpKind identifies one step of a random operation script.
type OpKind int

const (
	// OpPush appends Value.
	OpPush OpKind = iota
	// OpPop removes from the front via Pop.
	OpPop
	// OpShift removes from the front via Shift.
	OpShift
)

func (k OpKind) String() string {
	switch k {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpShift:
		return "shift"
	default:
		return "unknown"
	}
}

// Op is one step of a random operation script.
type Op struct {
	Kind  OpKind
	Value uint32 // only meaningful for OpPush
}

// Ops returns a script of n operations where each step is a push with
// probability pushRatio and otherwise a pop or a shift with equal odds.
func (r *RNG) Ops(n int, pushRatio float64) []Op {
	ops := make([]Op, n)
	for i := range ops {
		switch {
		case r.Float64() < pushRatio:
			ops[i] = Op{Kind: OpPush, Value: r.Uint24()}
		case r.Intn(2) == 0:
			ops[i] = Op{Kind: OpPop}
		default:
			ops[i] = Op{Kind: OpShift}
		}
	}
	return ops
}

// FIFO is a slice-backed queue used as the reference model for ring tests.
type FIFO struct {
	items []uint32
}

// Push appends v.
func (f *FIFO) Push(v uint32) { f.items = append(f.items, v) }

// Pop removes and returns the oldest value.
func (f *FIFO) Pop() (uint32, bool) {
	if len(f.items) == 0 {
		return 0, false
	}
	v := f.items[0]
	f.items = f.items[1:]
	return v, true
}

// Len returns the number of queued values.
func (f *FIFO) Len() int { return len(f.items) }

// Slice returns a copy of the queued values, oldest first.
func (f *FIFO) Slice() []uint32 {
	out := make([]uint32, len(f.items))
	copy(out, f.items)
	return out
}
