package linalg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedDim enumerates every irrep tuple whose leading axes share one irrep
// and whose labels XOR to sym, summing the product of axis sizes. A vector
// stores every irrep.
func expectedDim(axes []Dimension, sym int) int {
	n := axes[0].N()
	rank := len(axes)
	if rank == 1 {
		return axes[0].Sum()
	}
	total := 0
	var walk func(a int, irreps []int)
	walk = func(a int, irreps []int) {
		if a == rank {
			x := 0
			for _, g := range irreps {
				x ^= g
			}
			for i := 1; i < rank-1; i++ {
				if irreps[i] != irreps[0] {
					return
				}
			}
			if x != sym {
				return
			}
			p := 1
			for i, g := range irreps {
				p *= axes[i].At(g)
			}
			total += p
			return
		}
		for g := 0; g < n; g++ {
			walk(a+1, append(irreps, g))
		}
	}
	walk(0, nil)
	return total
}

func TestTensor_DimMatchesSymmetryBlocks(t *testing.T) {
	dims := []Dimension{
		NewDimension(3),
		NewDimension(2, 1),
		NewDimension(3, 0, 1, 2),
		NewDimension(2, 1, 0, 3, 1, 1, 2, 0),
	}
	for _, d := range dims {
		for rank := 1; rank <= MaxRank; rank++ {
			axes := make([]Dimension, rank)
			for a := range axes {
				// Rotate sizes per axis so axes differ.
				v := d.Values()
				for i := range v {
					v[i] = d.At((i + a) % d.N())
				}
				axes[a] = NewDimension(v...)
			}
			for sym := 0; sym < d.N(); sym++ {
				name := fmt.Sprintf("nirrep=%d/rank=%d/sym=%d", d.N(), rank, sym)
				t.Run(name, func(t *testing.T) {
					ten, err := New[float64](axes, WithSymmetry(sym), WithFill(2.5))
					require.NoError(t, err)

					assert.Equal(t, expectedDim(axes, sym), ten.Dim())
					for h := 0; h < ten.NIrrep(); h++ {
						b, err := ten.Block(h)
						require.NoError(t, err)
						for _, v := range b.Data {
							assert.Equal(t, 2.5, v)
						}
					}
				})
			}
		}
	}
}

func TestTensor_DefaultFillIsZero(t *testing.T) {
	m, err := NewMatrix[complex128](NewDimension(2, 1), NewDimension(1, 3))
	require.NoError(t, err)

	for h := 0; h < m.NIrrep(); h++ {
		b, err := m.Block(h)
		require.NoError(t, err)
		for _, v := range b.Data {
			assert.Equal(t, complex128(0), v)
		}
	}
}

func TestTensor_ConstructionVariants(t *testing.T) {
	t.Run("LabeledBlocked", func(t *testing.T) {
		m, err := NewMatrix[float64](NewDimension(2, 1), NewDimension(2, 1), WithLabel("F"))
		require.NoError(t, err)
		assert.Equal(t, "F", m.Label())
		assert.Equal(t, 2, m.NIrrep())
		assert.Equal(t, 5, m.Dim())
	})

	t.Run("UnlabeledSingleIrrep", func(t *testing.T) {
		m, err := NewMatrixN[float32](3, 4)
		require.NoError(t, err)
		assert.Equal(t, "", m.Label())
		assert.Equal(t, 1, m.NIrrep())
		assert.Equal(t, 12, m.Dim())
		assert.Equal(t, [][]int{{3, 4}}, m.Shapes())
	})

	t.Run("SymmetryAssigned", func(t *testing.T) {
		m, err := NewMatrix[float64](NewDimension(2, 1), NewDimension(3, 4), WithSymmetry(1))
		require.NoError(t, err)
		assert.Equal(t, 1, m.Symmetry())
		assert.Equal(t, [][]int{{2, 4}, {1, 3}}, m.Shapes())

		rows, err := m.Rows(0)
		require.NoError(t, err)
		cols, err := m.Cols(0)
		require.NoError(t, err)
		assert.Equal(t, 2, rows)
		assert.Equal(t, 4, cols)
	})

	t.Run("Rank3SingleIrrep", func(t *testing.T) {
		ten, err := NewTensor3N[float64](2, 3, 4, WithFill(1))
		require.NoError(t, err)
		assert.Equal(t, 3, ten.Rank())
		assert.Equal(t, 24, ten.Dim())
	})

	t.Run("ComplexFill", func(t *testing.T) {
		v, err := NewVectorN[complex128](3, WithComplexFill(1+2i))
		require.NoError(t, err)
		x, err := v.Get(0, 2)
		require.NoError(t, err)
		assert.Equal(t, 1+2i, x)
	})

	t.Run("ComplexFillRejectedForReal", func(t *testing.T) {
		_, err := NewVectorN[float64](3, WithComplexFill(1+2i))
		assert.ErrorIs(t, err, ErrInvalidFill)
	})

	t.Run("NirrepMismatch", func(t *testing.T) {
		_, err := NewMatrix[float64](NewDimension(1, 1), NewDimension(1))
		assert.ErrorIs(t, err, ErrNirrepMismatch)
	})

	t.Run("InvalidSymmetry", func(t *testing.T) {
		_, err := NewMatrix[float64](NewDimension(1, 1), NewDimension(1, 1), WithSymmetry(2))
		assert.ErrorIs(t, err, ErrInvalidSymmetry)
	})

	t.Run("InvalidRank", func(t *testing.T) {
		_, err := New[float64](nil)
		assert.ErrorIs(t, err, ErrInvalidRank)
		_, err = NewN[float64]([]int{1, 1, 1, 1})
		assert.ErrorIs(t, err, ErrInvalidRank)
	})
}

func TestVector_EveryIrrepBlockStored(t *testing.T) {
	for _, sym := range []int{0, 1} {
		v, err := NewVector[float64](NewDimension(2, 1), WithSymmetry(sym))
		require.NoError(t, err)

		assert.Equal(t, 3, v.Dim())
		assert.Equal(t, [][]int{{2}, {1}}, v.Shapes())
		assert.Equal(t, sym, v.Symmetry())

		require.NoError(t, v.Set(1, 0, 3))
		x, err := v.Get(1, 0)
		require.NoError(t, err)
		assert.Equal(t, 3.0, x)

		b, err := v.Block(0)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, b.Shape)
		assert.True(t, v.Dimpi().Equal(NewDimension(2, 1)))
	}
}

func TestVector_ElementBounds(t *testing.T) {
	v, err := NewVector[float64](NewDimension(2, 1))
	require.NoError(t, err)

	_, err = v.Get(1, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, 1, ie.Limit)

	assert.ErrorIs(t, v.Set(0, -1, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, v.Set(2, 0, 1), ErrIrrepOutOfRange)
}

func TestMatrix_ElementBounds(t *testing.T) {
	m, err := NewMatrix[float64](NewDimension(2, 1), NewDimension(1, 3))
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 0, 2, 5))
	x, err := m.Get(1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, x)

	_, err = m.Get(0, 2, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, m.Set(1, 0, 3, 1), ErrIndexOutOfRange)
	_, err = m.Get(2, 0, 0)
	assert.ErrorIs(t, err, ErrIrrepOutOfRange)
}

func TestTensor3_BlockLayout(t *testing.T) {
	ten, err := NewTensor3[float64](
		[3]Dimension{NewDimension(1, 2), NewDimension(2, 1), NewDimension(1, 1)},
		WithSymmetry(1),
	)
	require.NoError(t, err)

	// (0,0,1) and (1,1,1); (0,1,0) and (1,0,0) have no block.
	assert.Equal(t, [][]int{{1, 2, 1}, {2, 1, 1}}, ten.Shapes())
	assert.Equal(t, 4, ten.Dim())
}

func TestTensor_AxesDimpiIsCopy(t *testing.T) {
	m, err := NewMatrix[float64](NewDimension(2, 1), NewDimension(1, 2))
	require.NoError(t, err)

	axes := m.AxesDimpi()
	axes[0] = NewDimension(9, 9)
	assert.True(t, m.Rowspi().Equal(NewDimension(2, 1)))

	d, err := m.AxesDimpiAt(1)
	require.NoError(t, err)
	assert.True(t, d.Equal(NewDimension(1, 2)))

	_, err = m.AxesDimpiAt(2)
	assert.ErrorIs(t, err, ErrAxisOutOfRange)
}

func TestTensor_BlockAliasesStorage(t *testing.T) {
	m, err := NewMatrixN[float64](2, 2)
	require.NoError(t, err)

	b, err := m.Block(0)
	require.NoError(t, err)
	b.Set(4, 1, 0)

	v, err := m.Get(0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestTensor_SetBlockRoundTrip(t *testing.T) {
	ten, err := New[float64]([]Dimension{NewDimension(2, 1), NewDimension(2, 3)})
	require.NoError(t, err)

	for h := 0; h < ten.NIrrep(); h++ {
		shape := ten.Shapes()[h]
		x := NewBlock(shape, 0.0)
		for i := range x.Data {
			x.Data[i] = float64(10*h + i)
		}
		require.NoError(t, ten.SetBlock(h, x))

		got, err := ten.Block(h)
		require.NoError(t, err)
		assert.True(t, got.Equal(x))
	}
}

func TestTensor_SetBlockErrorsLeaveTensorUnchanged(t *testing.T) {
	ten, err := New[float64]([]Dimension{NewDimension(2, 1), NewDimension(2, 1)}, WithFill(1))
	require.NoError(t, err)
	before := ten.Clone()

	err = ten.SetBlock(2, NewBlock([]int{1, 1}, 5.0))
	assert.ErrorIs(t, err, ErrIrrepOutOfRange)
	var ie *IndexError
	assert.ErrorAs(t, err, &ie)

	err = ten.SetBlock(0, NewBlock([]int{1, 2}, 5.0))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []int{2, 2}, se.Expected)

	assert.True(t, ten.Equal(before))

	_, err = ten.Block(5)
	assert.ErrorIs(t, err, ErrIrrepOutOfRange)
}

func TestTensor_SetSymmetryReshapes(t *testing.T) {
	m, err := NewMatrix[float64](NewDimension(2, 1), NewDimension(3, 4), WithFill(1))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 3}, {1, 4}}, m.Shapes())

	require.NoError(t, m.SetSymmetry(1))
	assert.Equal(t, [][]int{{2, 4}, {1, 3}}, m.Shapes())
	assert.Equal(t, 11, m.Dim())
	for h := 0; h < 2; h++ {
		b, err := m.Block(h)
		require.NoError(t, err)
		for _, v := range b.Data {
			assert.Zero(t, v)
		}
	}

	assert.ErrorIs(t, m.SetSymmetry(2), ErrInvalidSymmetry)
}

func TestTensor_LabelAndScale(t *testing.T) {
	v, err := NewVectorN[float64](3, WithFill(2))
	require.NoError(t, err)

	v.SetLabel("eps")
	assert.Equal(t, "eps", v.Label())

	v.Scale(0.5)
	x, err := v.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, x)

	_, err = v.Get(0, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestTensor_StringViews(t *testing.T) {
	m, err := NewMatrix[float64](NewDimension(1, 1), NewDimension(1, 1), WithLabel("Λ <Oo|Vv>"), WithFill(1))
	require.NoError(t, err)

	repr := m.GoString()
	assert.Contains(t, repr, "linalg.Matrix[float64]")
	assert.Contains(t, repr, `label: "Λ <Oo|Vv>"`)

	s := m.String()
	assert.Contains(t, s, "Matrix Λ <Oo|Vv>")
	assert.Contains(t, s, "Irrep 0")
	assert.Contains(t, s, "Irrep 1")

	d := m.Describe("(converged)")
	assert.Contains(t, d, "(converged)")

	// Views are pure.
	assert.Equal(t, s, m.String())
}

func TestMatrix_Transpose(t *testing.T) {
	m, err := NewMatrix[float64](NewDimension(2, 1), NewDimension(1, 3), WithSymmetry(1))
	require.NoError(t, err)
	b0, _ := m.Block(0) // rows irrep 0 (2), cols irrep 1 (3)
	for i := range b0.Data {
		b0.Data[i] = float64(i + 1)
	}

	tr := m.Transpose()
	assert.True(t, tr.Rowspi().Equal(NewDimension(1, 3)))
	assert.True(t, tr.Colspi().Equal(NewDimension(2, 1)))

	// Rows of irrep 1 in the transpose come from block 0 of m.
	tb, err := tr.Block(1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, tb.Shape)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, b0.At(i, j), tb.At(j, i))
		}
	}
}
