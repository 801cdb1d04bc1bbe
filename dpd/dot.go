package dpd

import (
	"context"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/symtensor/linalg"
)

// Dot returns the sum over all blocks of a[h]·b[h], accumulated in float64.
// a and b must have the same irreps, symmetry and block shapes. Blocks are
// paged in one irrep at a time.
func Dot[T linalg.Real](ctx context.Context, a, b Buffer[T]) (float64, error) {
	if a.NIrrep() != b.NIrrep() || a.Symmetry() != b.Symmetry() ||
		!slices.EqualFunc(a.Shapes(), b.Shapes(), func(x, y []int) bool { return slices.Equal(x, y) }) {
		return 0, fmt.Errorf("%w: dot of %q and %q", ErrBufferShape, a.Label(), b.Label())
	}

	var sum float64
	for h, shape := range a.Shapes() {
		if shape[0]*shape[1] == 0 {
			continue
		}
		ba, err := a.Block(ctx, h)
		if err != nil {
			return 0, err
		}
		bb, err := b.Block(ctx, h)
		if err != nil {
			return 0, err
		}
		sum += dot(ba.Data, bb.Data)
	}
	return sum, nil
}

func dot[T linalg.Real](x, y []T) float64 {
	if xs, ok := any(x).([]float64); ok {
		return floats.Dot(xs, any(y).([]float64))
	}
	var s float64
	for i := range x {
		s += float64(x[i]) * float64(y[i])
	}
	return s
}
