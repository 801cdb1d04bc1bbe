package linalg

// Matrix is a rank-2 symmetry-blocked tensor. Block h has rows of irrep h
// and columns of irrep h^symmetry.
type Matrix[T Element] struct {
	Tensor[T]
}

// NewMatrix creates a blocked matrix.
func NewMatrix[T Element](rowspi, colspi Dimension, opts ...Option) (*Matrix[T], error) {
	t, err := New[T]([]Dimension{rowspi, colspi}, opts...)
	if err != nil {
		return nil, err
	}
	return &Matrix[T]{Tensor: *t}, nil
}

// NewMatrixN creates a single-irrep rows x cols matrix.
func NewMatrixN[T Element](rows, cols int, opts ...Option) (*Matrix[T], error) {
	return NewMatrix[T](Single(rows), Single(cols), opts...)
}

// Rowspi returns a copy of the row Dimension.
func (m *Matrix[T]) Rowspi() Dimension { return m.AxesDimpi()[0] }

// Colspi returns a copy of the column Dimension.
func (m *Matrix[T]) Colspi() Dimension { return m.AxesDimpi()[1] }

// Rows returns the number of rows of block h.
func (m *Matrix[T]) Rows(h int) (int, error) {
	if h < 0 || h >= m.nirrep {
		return 0, irrepError(h, m.nirrep)
	}
	return m.axes[0].At(h), nil
}

// Cols returns the number of columns of block h.
func (m *Matrix[T]) Cols(h int) (int, error) {
	if h < 0 || h >= m.nirrep {
		return 0, irrepError(h, m.nirrep)
	}
	return m.axes[1].At(h ^ m.symmetry), nil
}

// Get returns element (i, j) of block h.
func (m *Matrix[T]) Get(h, i, j int) (T, error) {
	b, err := m.Block(h)
	if err != nil {
		return *new(T), err
	}
	off, err := elementOffset(b, i, j)
	if err != nil {
		return *new(T), err
	}
	return b.Data[off], nil
}

// Set stores v at element (i, j) of block h.
func (m *Matrix[T]) Set(h, i, j int, v T) error {
	b, err := m.Block(h)
	if err != nil {
		return err
	}
	off, err := elementOffset(b, i, j)
	if err != nil {
		return err
	}
	b.Data[off] = v
	return nil
}

func elementOffset[T Element](b *Block[T], i, j int) (int, error) {
	if i < 0 || i >= b.Shape[0] {
		return 0, &IndexError{Kind: ErrIndexOutOfRange, Index: i, Limit: b.Shape[0]}
	}
	if j < 0 || j >= b.Shape[1] {
		return 0, &IndexError{Kind: ErrIndexOutOfRange, Index: j, Limit: b.Shape[1]}
	}
	return i*b.Shape[1] + j, nil
}

// Transpose returns a new matrix holding the transpose of m.
func (m *Matrix[T]) Transpose() *Matrix[T] {
	out := &Matrix[T]{Tensor: Tensor[T]{
		label:    m.label,
		nirrep:   m.nirrep,
		axes:     []Dimension{m.Colspi(), m.Rowspi()},
		symmetry: m.symmetry,
	}}
	out.allocate(*new(T))
	for h, dst := range out.blocks {
		// Rows of irrep h in the transpose are the columns of irrep h in m.
		src := m.blocks[h^m.symmetry]
		rows, cols := src.Shape[0], src.Shape[1]
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dst.Data[j*rows+i] = src.Data[i*cols+j]
			}
		}
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Matrix[T]) Clone() *Matrix[T] {
	return &Matrix[T]{Tensor: *m.Tensor.Clone()}
}

func (m *Matrix[T]) fullLike(x T) *Matrix[T] {
	return &Matrix[T]{Tensor: *m.filled(x)}
}

func (m *Matrix[T]) unitLike(isOne bool) *Matrix[T] {
	return m.fullLike(unit[T](isOne))
}
