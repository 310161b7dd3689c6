// Package testutil provides testing utilities for the containers.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG for generating 24-bit values and random
// operation scripts, plus a plain-slice FIFO that serves as the reference
// model in differential tests.
//
// # Random Values
//
//	rng := testutil.NewRNG(seed)
//	vals := rng.Uint24s(1000) // each in [0, 2^24-1]
//
// # Differential Testing
//
//	var model testutil.FIFO
//	for _, op := range rng.Ops(500, 0.6) {
//	    switch op.Kind {
//	    case testutil.OpPush:
//	        ring.Push(op.Value)
//	        model.Push(op.Value)
//	    case testutil.OpPop:
//	        got, ok := ring.Pop()
//	        want, wantOK := model.Pop()
//	        // compare
//	    }
//	}
package testutil
