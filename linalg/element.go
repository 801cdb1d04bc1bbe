package linalg

import "math/cmplx"

// Element is the set of supported tensor element types.
type Element interface {
	float32 | float64 | complex128
}

// Real is the set of real element types.
type Real interface {
	float32 | float64
}

// Kind identifies an element type at runtime.
type Kind uint8

const (
	KindFloat32 Kind = iota + 1
	KindFloat64
	KindComplex128
)

func (k Kind) String() string {
	switch k {
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindComplex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// Size returns the element width in bytes.
func (k Kind) Size() int {
	switch k {
	case KindFloat32:
		return 4
	case KindFloat64:
		return 8
	case KindComplex128:
		return 16
	default:
		return 0
	}
}

// KindOf returns the Kind of T.
func KindOf[T Element]() Kind {
	var z T
	switch any(z).(type) {
	case float32:
		return KindFloat32
	case complex128:
		return KindComplex128
	default:
		return KindFloat64
	}
}

// fromComplex converts c into T. For real T the imaginary part must be zero.
func fromComplex[T Element](c complex128) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		if imag(c) != 0 {
			return out, ErrInvalidFill
		}
		*p = float32(real(c))
	case *float64:
		if imag(c) != 0 {
			return out, ErrInvalidFill
		}
		*p = real(c)
	case *complex128:
		*p = c
	}
	return out, nil
}

// toComplex widens v to complex128.
func toComplex[T Element](v T) complex128 {
	switch x := any(v).(type) {
	case float32:
		return complex(float64(x), 0)
	case float64:
		return complex(x, 0)
	case complex128:
		return x
	}
	return 0
}

// fromFloat64 converts a real double into T.
func fromFloat64[T Element](v float64) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = float32(v)
	case *float64:
		*p = v
	case *complex128:
		*p = complex(v, 0)
	}
	return out
}

func one[T Element]() T { return fromFloat64[T](1) }

func conj[T Element](v T) T {
	if c, ok := any(v).(complex128); ok {
		return any(cmplx.Conj(c)).(T)
	}
	return v
}
