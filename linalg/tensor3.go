package linalg

// Tensor3 is a rank-3 symmetry-blocked tensor. It adds no operations beyond
// the shared Tensor surface.
//
// Block h holds the irrep combination (h, h, symmetry): the first two axes
// share irrep h and the third carries the irrep that closes the XOR. Other
// symmetry-allowed combinations, such as (g, h, g^h^symmetry) with g != h,
// are not representable.
type Tensor3[T Element] struct {
	Tensor[T]
}

// NewTensor3 creates a blocked rank-3 tensor.
func NewTensor3[T Element](axes [3]Dimension, opts ...Option) (*Tensor3[T], error) {
	t, err := New[T](axes[:], opts...)
	if err != nil {
		return nil, err
	}
	return &Tensor3[T]{Tensor: *t}, nil
}

// NewTensor3N creates a single-irrep rank-3 tensor.
func NewTensor3N[T Element](n0, n1, n2 int, opts ...Option) (*Tensor3[T], error) {
	return NewTensor3[T]([3]Dimension{Single(n0), Single(n1), Single(n2)}, opts...)
}

// Clone returns a deep copy of t.
func (t *Tensor3[T]) Clone() *Tensor3[T] {
	return &Tensor3[T]{Tensor: *t.Tensor.Clone()}
}

func (t *Tensor3[T]) fullLike(x T) *Tensor3[T] {
	return &Tensor3[T]{Tensor: *t.filled(x)}
}

func (t *Tensor3[T]) unitLike(isOne bool) *Tensor3[T] {
	return t.fullLike(unit[T](isOne))
}
