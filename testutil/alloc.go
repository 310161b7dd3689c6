package testutil

import "runtime"

// AllocatedBytes returns the number of heap bytes allocated while fn runs.
// Other goroutines allocating concurrently are counted too, so assert upper
// bounds generously.
func AllocatedBytes(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}
