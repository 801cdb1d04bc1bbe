// Package linalg provides symmetry-blocked tensors.
//
// A tensor of rank 1..3 is split into one dense block per irreducible
// representation (irrep). Each axis is described by a [Dimension], the
// per-irrep sizes along that axis, and the tensor carries an overall symmetry
// label that decides which irrep combinations are stored.
//
// # Variants
//
//   - [Vector]: rank 1, one block per irrep; adds Dimpi and element access
//   - [Matrix]: rank 2, adds Rows/Cols, Transpose and the Doublet family
//   - [Tensor3]: rank 3, shared surface only
//
// All variants embed [Tensor] and satisfy [Blocked].
//
// # Construction
//
//	m, err := linalg.NewMatrix[float64](
//	    linalg.NewDimension(2, 1), linalg.NewDimension(2, 1),
//	    linalg.WithLabel("Fock"), linalg.WithFill(1),
//	)
//
// Single-irrep constructors (NewVectorN, NewMatrixN, NewTensor3N) take plain
// sizes and imply one irrep.
//
// # Contractions
//
// [Doublet] multiplies two matrices with an optional transpose or conjugate
// transpose on each operand, dispatching every block to gonum BLAS.
// [DoubletReal] and [DoubletRealLeft] accept one real double operand and
// promote it to the other operand's element type.
package linalg
