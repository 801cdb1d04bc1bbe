package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillUniformRange(t *testing.T) {
	rng := NewRNG(4711)

	v := make([]float32, 64)
	FillUniformRange(rng, v, -1, 1)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, float32(-1))
		assert.Less(t, x, float32(1))
	}

	c := make([]complex128, 8)
	FillUniform(rng, c)
	for _, x := range c {
		assert.GreaterOrEqual(t, real(x), 0.0)
		assert.Less(t, imag(x), 1.0)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(1)
	a := make([]float64, 10)
	FillUniform(rng, a)

	rng.Reset()
	b := make([]float64, 10)
	FillUniform(rng, b)
	assert.Equal(t, a, b)
	assert.Equal(t, int64(1), rng.Seed())
}

func TestDims(t *testing.T) {
	rng := NewRNG(7)
	d := rng.Dims(4, 3)
	assert.Len(t, d, 4)
	for _, n := range d {
		assert.LessOrEqual(t, n, 3)
	}
}

func TestDot(t *testing.T) {
	assert.Equal(t, 32.0, Dot([]float64{1, 2, 3}, []float64{4, 5, 6}))
	assert.Equal(t, float32(11), Dot([]float32{1, 2}, []float32{3, 4}))
	assert.Equal(t, complex(-1, 0), Dot([]complex128{1i}, []complex128{1i}))
	assert.Panics(t, func() { Dot([]float64{1}, nil) })
}
