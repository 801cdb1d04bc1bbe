package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Op selects how a Doublet operand is used.
type Op uint8

const (
	// OpNone uses the operand as is.
	OpNone Op = iota
	// OpTranspose uses the transpose of the operand.
	OpTranspose
	// OpTransposeConj uses the conjugate transpose. For real element types it
	// is identical to OpTranspose.
	OpTransposeConj
)

func (op Op) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpTranspose:
		return "transpose"
	case OpTransposeConj:
		return "transpose_conj"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

func (op Op) blas() (blas.Transpose, bool) {
	switch op {
	case OpNone:
		return blas.NoTrans, true
	case OpTranspose:
		return blas.Trans, true
	case OpTransposeConj:
		return blas.ConjTrans, true
	}
	return 0, false
}

// Promote returns the result kind of a mixed-type Doublet. The rule is:
// equal kinds keep their kind, and a real double operand takes the kind of
// the other operand. Other combinations are not supported.
func Promote(a, b Kind) (Kind, bool) {
	k, ok := promotion[[2]Kind{a, b}]
	return k, ok
}

var promotion = map[[2]Kind]Kind{
	{KindFloat32, KindFloat32}:       KindFloat32,
	{KindFloat64, KindFloat64}:       KindFloat64,
	{KindComplex128, KindComplex128}: KindComplex128,
	{KindFloat32, KindFloat64}:       KindFloat32,
	{KindFloat64, KindFloat32}:       KindFloat32,
	{KindComplex128, KindFloat64}:    KindComplex128,
	{KindFloat64, KindComplex128}:    KindComplex128,
}

// Doublet computes op(a) · op(b) block by block.
//
// The result has symmetry a.Symmetry() ^ b.Symmetry(), rows from op(a) and
// columns from op(b). The column Dimension of op(a) must equal the row
// Dimension of op(b).
func Doublet[T Element](a, b *Matrix[T], opA, opB Op) (*Matrix[T], error) {
	tA, ok := opA.blas()
	if !ok {
		return nil, fmt.Errorf("linalg: invalid op %v", opA)
	}
	tB, ok := opB.blas()
	if !ok {
		return nil, fmt.Errorf("linalg: invalid op %v", opB)
	}
	if a.nirrep != b.nirrep {
		return nil, fmt.Errorf("%w: %d and %d irreps", ErrNirrepMismatch, a.nirrep, b.nirrep)
	}

	aRows, aCols := a.opAxes(opA)
	bRows, bCols := b.opAxes(opB)
	if !aCols.Equal(bRows) {
		return nil, fmt.Errorf("%w: op(A) columns %v, op(B) rows %v", ErrDimensionMismatch, aCols, bRows)
	}

	sym := a.symmetry ^ b.symmetry
	c, err := NewMatrix[T](aRows, bCols, WithSymmetry(sym))
	if err != nil {
		return nil, err
	}

	for h := 0; h < a.nirrep; h++ {
		inner := h ^ a.symmetry
		m, k, n := aRows.At(h), aCols.At(inner), bCols.At(h^sym)
		if m == 0 || n == 0 || k == 0 {
			continue
		}
		ab := a.blocks[opBlock(h, a.symmetry, opA)]
		bb := b.blocks[opBlock(inner, b.symmetry, opB)]
		gemm(tA, tB, ab, bb, c.blocks[h])
	}
	return c, nil
}

// DoubletT is Doublet with boolean transpose flags. It never conjugates.
func DoubletT[T Element](a, b *Matrix[T], transA, transB bool) (*Matrix[T], error) {
	return Doublet(a, b, transposeOp(transA), transposeOp(transB))
}

// DoubletReal multiplies a by a real double matrix b. b is promoted to T.
func DoubletReal[T Element](a *Matrix[T], b *Matrix[float64], opA, opB Op) (*Matrix[T], error) {
	if _, ok := Promote(KindOf[T](), KindFloat64); !ok {
		return nil, fmt.Errorf("linalg: no promotion for %v x float64", KindOf[T]())
	}
	return Doublet(a, promote[T](b), opA, opB)
}

// DoubletRealLeft multiplies a real double matrix a by b. a is promoted to T.
func DoubletRealLeft[T Element](a *Matrix[float64], b *Matrix[T], opA, opB Op) (*Matrix[T], error) {
	if _, ok := Promote(KindFloat64, KindOf[T]()); !ok {
		return nil, fmt.Errorf("linalg: no promotion for float64 x %v", KindOf[T]())
	}
	return Doublet(promote[T](a), b, opA, opB)
}

func transposeOp(trans bool) Op {
	if trans {
		return OpTranspose
	}
	return OpNone
}

// opAxes returns the row and column Dimensions of op(m).
func (m *Matrix[T]) opAxes(op Op) (Dimension, Dimension) {
	if op == OpNone {
		return m.axes[0], m.axes[1]
	}
	return m.axes[1], m.axes[0]
}

// opBlock returns the storage block of m holding the rows of irrep h of op(m).
func opBlock(h, sym int, op Op) int {
	if op == OpNone {
		return h
	}
	return h ^ sym
}

func promote[T Element](m *Matrix[float64]) *Matrix[T] {
	out := &Matrix[T]{Tensor: Tensor[T]{
		label:    m.label,
		nirrep:   m.nirrep,
		axes:     m.AxesDimpi(),
		symmetry: m.symmetry,
		blocks:   make([]*Block[T], len(m.blocks)),
	}}
	for h, src := range m.blocks {
		dst := NewBlock(src.Shape, *new(T))
		for i, v := range src.Data {
			dst.Data[i] = fromFloat64[T](v)
		}
		out.blocks[h] = dst
	}
	return out
}

// gemm computes c = op(a) · op(b) for dense row-major blocks.
func gemm[T Element](tA, tB blas.Transpose, a, b, c *Block[T]) {
	switch cd := any(c.Data).(type) {
	case []float64:
		blas64.Gemm(realTrans(tA), realTrans(tB), 1,
			blas64.General{Rows: a.Shape[0], Cols: a.Shape[1], Stride: stride(a), Data: any(a.Data).([]float64)},
			blas64.General{Rows: b.Shape[0], Cols: b.Shape[1], Stride: stride(b), Data: any(b.Data).([]float64)},
			0,
			blas64.General{Rows: c.Shape[0], Cols: c.Shape[1], Stride: stride(c), Data: cd})
	case []float32:
		blas32.Gemm(realTrans(tA), realTrans(tB), 1,
			blas32.General{Rows: a.Shape[0], Cols: a.Shape[1], Stride: stride(a), Data: any(a.Data).([]float32)},
			blas32.General{Rows: b.Shape[0], Cols: b.Shape[1], Stride: stride(b), Data: any(b.Data).([]float32)},
			0,
			blas32.General{Rows: c.Shape[0], Cols: c.Shape[1], Stride: stride(c), Data: cd})
	case []complex128:
		cblas128.Gemm(tA, tB, 1,
			cblas128.General{Rows: a.Shape[0], Cols: a.Shape[1], Stride: stride(a), Data: any(a.Data).([]complex128)},
			cblas128.General{Rows: b.Shape[0], Cols: b.Shape[1], Stride: stride(b), Data: any(b.Data).([]complex128)},
			0,
			cblas128.General{Rows: c.Shape[0], Cols: c.Shape[1], Stride: stride(c), Data: cd})
	}
}

func realTrans(t blas.Transpose) blas.Transpose {
	if t == blas.ConjTrans {
		return blas.Trans
	}
	return t
}

func stride[T Element](b *Block[T]) int {
	return max(b.Shape[1], 1)
}
