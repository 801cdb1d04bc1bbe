package linalg

import (
	"slices"
	"strconv"
	"strings"
)

// Dimension is an ordered sequence of per-irrep sizes.
//
// A Dimension is a value: methods never mutate the receiver and setters
// return a new Dimension.
type Dimension struct {
	name string
	v    []int
}

// NewDimension creates a Dimension from explicit per-irrep sizes.
// Negative sizes are clamped to zero.
func NewDimension(sizes ...int) Dimension {
	v := make([]int, len(sizes))
	for i, s := range sizes {
		v[i] = max(s, 0)
	}
	return Dimension{v: v}
}

// Single creates a one-irrep Dimension holding the given total size.
func Single(n int) Dimension {
	return NewDimension(n)
}

// Zeros creates a Dimension with nirrep entries, all zero.
func Zeros(nirrep int) Dimension {
	return Dimension{v: make([]int, max(nirrep, 0))}
}

// N returns the number of irreps.
func (d Dimension) N() int { return len(d.v) }

// Name returns the optional name of the Dimension.
func (d Dimension) Name() string { return d.name }

// WithName returns a copy of d carrying the given name.
func (d Dimension) WithName(name string) Dimension {
	return Dimension{name: name, v: slices.Clone(d.v)}
}

// Get returns the size for irrep h.
func (d Dimension) Get(h int) (int, error) {
	if h < 0 || h >= len(d.v) {
		return 0, irrepError(h, len(d.v))
	}
	return d.v[h], nil
}

// At is Get without the error. It panics on an out-of-range irrep and is
// meant for loops already bounded by N.
func (d Dimension) At(h int) int {
	return d.v[h]
}

// With returns a copy of d with irrep h set to n.
func (d Dimension) With(h, n int) (Dimension, error) {
	if h < 0 || h >= len(d.v) {
		return Dimension{}, irrepError(h, len(d.v))
	}
	out := Dimension{name: d.name, v: slices.Clone(d.v)}
	out.v[h] = max(n, 0)
	return out, nil
}

// Values returns a copy of the per-irrep sizes.
func (d Dimension) Values() []int { return slices.Clone(d.v) }

// Sum returns the total size over all irreps.
func (d Dimension) Sum() int {
	s := 0
	for _, n := range d.v {
		s += n
	}
	return s
}

// Max returns the largest per-irrep size.
func (d Dimension) Max() int {
	m := 0
	for _, n := range d.v {
		m = max(m, n)
	}
	return m
}

// Equal reports whether d and o have the same irrep count and entries.
// Names are ignored.
func (d Dimension) Equal(o Dimension) bool {
	return slices.Equal(d.v, o.v)
}

// Add returns the element-wise sum of d and o.
func (d Dimension) Add(o Dimension) (Dimension, error) {
	if d.N() != o.N() {
		return Dimension{}, ErrNirrepMismatch
	}
	out := Zeros(d.N())
	for h := range d.v {
		out.v[h] = d.v[h] + o.v[h]
	}
	return out, nil
}

// Sub returns the element-wise difference of d and o, clamped at zero.
func (d Dimension) Sub(o Dimension) (Dimension, error) {
	if d.N() != o.N() {
		return Dimension{}, ErrNirrepMismatch
	}
	out := Zeros(d.N())
	for h := range d.v {
		out.v[h] = max(d.v[h]-o.v[h], 0)
	}
	return out, nil
}

func (d Dimension) String() string {
	var b strings.Builder
	if d.name != "" {
		b.WriteString(d.name)
		b.WriteByte(' ')
	}
	b.WriteByte('[')
	for h, n := range d.v {
		if h > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(']')
	return b.String()
}
