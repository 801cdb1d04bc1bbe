package linalg

// Vector is a rank-1 symmetry-blocked tensor.
type Vector[T Element] struct {
	Tensor[T]
}

// NewVector creates a blocked vector.
func NewVector[T Element](dimpi Dimension, opts ...Option) (*Vector[T], error) {
	t, err := New[T]([]Dimension{dimpi}, opts...)
	if err != nil {
		return nil, err
	}
	return &Vector[T]{Tensor: *t}, nil
}

// NewVectorN creates a single-irrep vector of length n.
func NewVectorN[T Element](n int, opts ...Option) (*Vector[T], error) {
	return NewVector[T](Single(n), opts...)
}

// Dimpi returns a copy of the vector's Dimension.
func (v *Vector[T]) Dimpi() Dimension {
	return v.AxesDimpi()[0]
}

// Get returns element i of irrep h.
func (v *Vector[T]) Get(h, i int) (T, error) {
	b, err := v.Block(h)
	if err != nil {
		return *new(T), err
	}
	if i < 0 || i >= b.Len() {
		return *new(T), &IndexError{Kind: ErrIndexOutOfRange, Index: i, Limit: b.Len()}
	}
	return b.Data[i], nil
}

// Set stores val as element i of irrep h.
func (v *Vector[T]) Set(h, i int, val T) error {
	b, err := v.Block(h)
	if err != nil {
		return err
	}
	if i < 0 || i >= b.Len() {
		return &IndexError{Kind: ErrIndexOutOfRange, Index: i, Limit: b.Len()}
	}
	b.Data[i] = val
	return nil
}

// Clone returns a deep copy of v.
func (v *Vector[T]) Clone() *Vector[T] {
	return &Vector[T]{Tensor: *v.Tensor.Clone()}
}

func (v *Vector[T]) fullLike(x T) *Vector[T] {
	return &Vector[T]{Tensor: *v.filled(x)}
}

func (v *Vector[T]) unitLike(isOne bool) *Vector[T] {
	return v.fullLike(unit[T](isOne))
}
