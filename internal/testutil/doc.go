// Package testutil provides testing utilities for symtensor.
//
// This package is intended for use in tests only. It provides a seeded
// random source for filling blocks and straightforward reference
// reductions to check optimized kernels against.
//
// # Random Blocks
//
//	rng := testutil.NewRNG(seed)
//	testutil.FillUniform(rng, blk.Data)          // uniform [0, 1)
//	testutil.FillUniformRange(rng, blk.Data, -1, 1)
//
// # Reference Results
//
//	want := testutil.Dot(a.Data, b.Data)
package testutil
