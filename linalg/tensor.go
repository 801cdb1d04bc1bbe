package linalg

import (
	"fmt"
	"slices"
)

// MaxRank is the highest supported tensor rank.
const MaxRank = 3

// Blocked is the capability shared by every symmetry-blocked tensor variant.
type Blocked interface {
	Rank() int
	NIrrep() int
	Dim() int
	Label() string
	Symmetry() int
	AxesDimpi() []Dimension
	Shapes() [][]int
}

// Option configures tensor construction.
type Option func(*options)

type options struct {
	label    string
	symmetry int
	fill     complex128
}

// WithLabel attaches a human-readable label (used for printing only).
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithSymmetry sets the overall symmetry label. The default is 0, the
// totally symmetric irrep.
func WithSymmetry(h int) Option {
	return func(o *options) {
		o.symmetry = h
	}
}

// WithFill sets the initial value of every stored element.
func WithFill(v float64) Option {
	return func(o *options) {
		o.fill = complex(v, 0)
	}
}

// WithComplexFill sets a complex initial value. Real element types reject a
// non-zero imaginary part with ErrInvalidFill.
func WithComplexFill(v complex128) Option {
	return func(o *options) {
		o.fill = v
	}
}

// Tensor is a rank-1..3 array decomposed into per-irrep blocks.
//
// Block h is the block whose first-axis irrep is h. Middle axes carry irrep h
// as well and the last axis carries the irrep that makes the XOR of all axis
// irreps equal the tensor symmetry. For rank 1 there is no free axis, so only
// block h == symmetry is stored; every other block has shape [0].
type Tensor[T Element] struct {
	label    string
	nirrep   int
	axes     []Dimension
	symmetry int
	blocks   []*Block[T]
}

// New creates a blocked tensor with one Dimension per axis.
func New[T Element](axes []Dimension, opts ...Option) (*Tensor[T], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return newTensor[T](axes, o)
}

// NewN creates a single-irrep tensor from plain per-axis sizes.
func NewN[T Element](sizes []int, opts ...Option) (*Tensor[T], error) {
	return New[T](singleAxes(sizes), opts...)
}

func singleAxes(sizes []int) []Dimension {
	axes := make([]Dimension, len(sizes))
	for i, n := range sizes {
		axes[i] = Single(n)
	}
	return axes
}

func newTensor[T Element](axes []Dimension, o options) (*Tensor[T], error) {
	if len(axes) < 1 || len(axes) > MaxRank {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, len(axes))
	}
	nirrep := axes[0].N()
	for _, d := range axes[1:] {
		if d.N() != nirrep {
			return nil, fmt.Errorf("%w: axes have %d and %d irreps", ErrNirrepMismatch, nirrep, d.N())
		}
	}
	if nirrep < 1 || nirrep&(nirrep-1) != 0 {
		return nil, fmt.Errorf("%w: nirrep %d is not a power of two", ErrNirrepMismatch, nirrep)
	}
	if o.symmetry < 0 || o.symmetry >= nirrep {
		return nil, fmt.Errorf("%w: %d with %d irreps", ErrInvalidSymmetry, o.symmetry, nirrep)
	}
	fill, err := fromComplex[T](o.fill)
	if err != nil {
		return nil, err
	}

	t := &Tensor[T]{
		label:    o.label,
		nirrep:   nirrep,
		axes:     slices.Clone(axes),
		symmetry: o.symmetry,
	}
	t.allocate(fill)
	return t, nil
}

func (t *Tensor[T]) allocate(fill T) {
	t.blocks = make([]*Block[T], t.nirrep)
	for h := range t.blocks {
		t.blocks[h] = NewBlock(t.blockShape(h), fill)
	}
}

// blockIrreps returns the per-axis irreps of block h. Leading axes carry h
// and the last axis carries the irrep that brings the XOR of all labels to
// the symmetry. A vector's blocks are its irreps; the symmetry only labels it.
func (t *Tensor[T]) blockIrreps(h int) []int {
	rank := len(t.axes)
	if rank == 1 {
		return []int{h}
	}
	irreps := make([]int, rank)
	acc := 0
	for a := 0; a < rank-1; a++ {
		irreps[a] = h
		acc ^= h
	}
	irreps[rank-1] = acc ^ t.symmetry
	return irreps
}

func (t *Tensor[T]) blockShape(h int) []int {
	irreps := t.blockIrreps(h)
	shape := make([]int, len(irreps))
	for a, g := range irreps {
		shape[a] = t.axes[a].At(g)
	}
	return shape
}

// Rank returns the number of axes.
func (t *Tensor[T]) Rank() int { return len(t.axes) }

// NIrrep returns the number of irreps shared by all axes.
func (t *Tensor[T]) NIrrep() int { return t.nirrep }

// Kind returns the element type.
func (t *Tensor[T]) Kind() Kind { return KindOf[T]() }

// Label returns the tensor label.
func (t *Tensor[T]) Label() string { return t.label }

// SetLabel replaces the tensor label.
func (t *Tensor[T]) SetLabel(label string) { t.label = label }

// Symmetry returns the overall symmetry label.
func (t *Tensor[T]) Symmetry() int { return t.symmetry }

// SetSymmetry changes the overall symmetry label. This is a structural
// change: every block is reallocated with its new shape and zero-filled.
func (t *Tensor[T]) SetSymmetry(h int) error {
	if h < 0 || h >= t.nirrep {
		return fmt.Errorf("%w: %d with %d irreps", ErrInvalidSymmetry, h, t.nirrep)
	}
	if h == t.symmetry {
		return nil
	}
	t.symmetry = h
	t.allocate(*new(T))
	return nil
}

// Dim returns the number of stored elements across all blocks.
func (t *Tensor[T]) Dim() int {
	n := 0
	for _, b := range t.blocks {
		n += b.Len()
	}
	return n
}

// AxesDimpi returns a copy of every axis Dimension.
func (t *Tensor[T]) AxesDimpi() []Dimension {
	out := make([]Dimension, len(t.axes))
	for a, d := range t.axes {
		out[a] = NewDimension(d.v...).WithName(d.name)
	}
	return out
}

// AxesDimpiAt returns a copy of the Dimension of one axis.
func (t *Tensor[T]) AxesDimpiAt(axis int) (Dimension, error) {
	if axis < 0 || axis >= len(t.axes) {
		return Dimension{}, &IndexError{Kind: ErrAxisOutOfRange, Index: axis, Limit: len(t.axes)}
	}
	d := t.axes[axis]
	return NewDimension(d.v...).WithName(d.name), nil
}

// Shapes returns the shape of every block, indexed by irrep.
func (t *Tensor[T]) Shapes() [][]int {
	out := make([][]int, t.nirrep)
	for h, b := range t.blocks {
		out[h] = slices.Clone(b.Shape)
	}
	return out
}

// Block returns block h. The returned block aliases the tensor storage.
func (t *Tensor[T]) Block(h int) (*Block[T], error) {
	if h < 0 || h >= t.nirrep {
		return nil, irrepError(h, t.nirrep)
	}
	return t.blocks[h], nil
}

// SetBlock copies data into block h. The tensor is left unmodified on error.
func (t *Tensor[T]) SetBlock(h int, data *Block[T]) error {
	if h < 0 || h >= t.nirrep {
		return irrepError(h, t.nirrep)
	}
	dst := t.blocks[h]
	if data == nil || !slices.Equal(dst.Shape, data.Shape) || len(data.Data) != len(dst.Data) {
		var actual []int
		if data != nil {
			actual = slices.Clone(data.Shape)
		}
		return &ShapeError{Kind: ErrShapeMismatch, Irrep: h, Expected: slices.Clone(dst.Shape), Actual: actual}
	}
	copy(dst.Data, data.Data)
	return nil
}

// Fill sets every stored element to v.
func (t *Tensor[T]) Fill(v T) {
	for _, b := range t.blocks {
		b.Fill(v)
	}
}

// Scale multiplies every stored element by a.
func (t *Tensor[T]) Scale(a T) {
	for _, b := range t.blocks {
		b.Scale(a)
	}
}

// Clone returns a deep copy of t.
func (t *Tensor[T]) Clone() *Tensor[T] {
	c := &Tensor[T]{
		label:    t.label,
		nirrep:   t.nirrep,
		axes:     t.AxesDimpi(),
		symmetry: t.symmetry,
		blocks:   make([]*Block[T], len(t.blocks)),
	}
	for h, b := range t.blocks {
		c.blocks[h] = b.Clone()
	}
	return c
}

// Equal reports whether t and o have the same structure and elements.
// Labels are ignored.
func (t *Tensor[T]) Equal(o *Tensor[T]) bool {
	if t.nirrep != o.nirrep || t.symmetry != o.symmetry || len(t.axes) != len(o.axes) {
		return false
	}
	for a := range t.axes {
		if !t.axes[a].Equal(o.axes[a]) {
			return false
		}
	}
	for h := range t.blocks {
		if !t.blocks[h].Equal(o.blocks[h]) {
			return false
		}
	}
	return true
}

// filled returns a tensor shaped like t with every element set to v.
func (t *Tensor[T]) filled(v T) *Tensor[T] {
	c := &Tensor[T]{
		label:    t.label,
		nirrep:   t.nirrep,
		axes:     t.AxesDimpi(),
		symmetry: t.symmetry,
	}
	c.allocate(v)
	return c
}

func (t *Tensor[T]) fullLike(v T) *Tensor[T] { return t.filled(v) }

func (t *Tensor[T]) unitLike(one bool) *Tensor[T] { return t.filled(unit[T](one)) }

func unit[T Element](isOne bool) T {
	if isOne {
		return one[T]()
	}
	return *new(T)
}
