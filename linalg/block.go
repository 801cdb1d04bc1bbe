package linalg

import "slices"

// Block is a dense row-major block of a symmetry-blocked tensor.
//
// Blocks returned by tensor accessors alias the tensor's storage.
type Block[T Element] struct {
	Shape []int
	Data  []T
}

// NewBlock allocates a block of the given shape filled with v.
func NewBlock[T Element](shape []int, v T) *Block[T] {
	b := &Block[T]{Shape: slices.Clone(shape), Data: make([]T, volume(shape))}
	if v != *new(T) {
		for i := range b.Data {
			b.Data[i] = v
		}
	}
	return b
}

// BlockFrom wraps data in a block of the given shape.
// The data slice is used as-is; len(data) must equal the shape's volume.
func BlockFrom[T Element](shape []int, data []T) (*Block[T], error) {
	if volume(shape) != len(data) {
		return nil, &ShapeError{Kind: ErrShapeMismatch, Irrep: -1, Expected: slices.Clone(shape), Actual: []int{len(data)}}
	}
	return &Block[T]{Shape: slices.Clone(shape), Data: data}, nil
}

// Len returns the number of elements in the block.
func (b *Block[T]) Len() int { return len(b.Data) }

// Rank returns the number of axes of the block.
func (b *Block[T]) Rank() int { return len(b.Shape) }

// offset computes the row-major offset of idx.
func (b *Block[T]) offset(idx []int) (int, bool) {
	if len(idx) != len(b.Shape) {
		return 0, false
	}
	off := 0
	for a, i := range idx {
		if i < 0 || i >= b.Shape[a] {
			return 0, false
		}
		off = off*b.Shape[a] + i
	}
	return off, true
}

// At returns the element at idx. It panics if idx is out of range.
func (b *Block[T]) At(idx ...int) T {
	off, ok := b.offset(idx)
	if !ok {
		panic("linalg: block index out of range")
	}
	return b.Data[off]
}

// Set stores v at idx. It panics if idx is out of range.
func (b *Block[T]) Set(v T, idx ...int) {
	off, ok := b.offset(idx)
	if !ok {
		panic("linalg: block index out of range")
	}
	b.Data[off] = v
}

// Fill sets every element to v.
func (b *Block[T]) Fill(v T) {
	for i := range b.Data {
		b.Data[i] = v
	}
}

// Scale multiplies every element by a.
func (b *Block[T]) Scale(a T) {
	for i := range b.Data {
		b.Data[i] *= a
	}
}

// Clone returns a deep copy of b.
func (b *Block[T]) Clone() *Block[T] {
	return &Block[T]{Shape: slices.Clone(b.Shape), Data: slices.Clone(b.Data)}
}

// Equal reports whether b and o have equal shapes and elements.
func (b *Block[T]) Equal(o *Block[T]) bool {
	if b == nil || o == nil {
		return b == o
	}
	return slices.Equal(b.Shape, o.Shape) && slices.Equal(b.Data, o.Data)
}

func volume(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
