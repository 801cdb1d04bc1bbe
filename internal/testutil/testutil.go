package testutil

import (
	"math/rand"
	"sync"
)

// Number is the set of element types the helpers fill and reduce.
type Number interface {
	float32 | float64 | complex128
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Dims returns nirrep random irrep sizes in [0, maxSize].
func (r *RNG) Dims(nirrep, maxSize int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, nirrep)
	for i := range out {
		out[i] = r.rand.Intn(maxSize + 1)
	}
	return out
}

// FillUniform fills dst with random values in range [0, 1). Complex values
// get independent real and imaginary parts.
// Locks only once per call (preferred over calling Float64 in a loop).
func FillUniform[T Number](r *RNG, dst []T) {
	FillUniformRange(r, dst, 0, 1)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func FillUniformRange[T Number](r *RNG, dst []T, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		re := minVal + r.rand.Float64()*span
		switch p := any(&dst[i]).(type) {
		case *float32:
			*p = float32(re)
		case *float64:
			*p = re
		case *complex128:
			*p = complex(re, minVal+r.rand.Float64()*span)
		}
	}
}

// Dot returns Σ a[i]·b[i] accumulated in float64 (complex128 for complex
// input), looping in order. It panics if the lengths differ.
func Dot[T Number](a, b []T) T {
	if len(a) != len(b) {
		panic("testutil: length mismatch")
	}
	var re, im float64
	for i := range a {
		switch x := any(a[i]).(type) {
		case float32:
			re += float64(x) * float64(any(b[i]).(float32))
		case float64:
			re += x * any(b[i]).(float64)
		case complex128:
			p := x * any(b[i]).(complex128)
			re += real(p)
			im += imag(p)
		}
	}
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = float32(re)
	case *float64:
		*p = re
	case *complex128:
		*p = complex(re, im)
	}
	return out
}
