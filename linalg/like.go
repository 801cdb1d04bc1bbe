package linalg

// fillable is implemented by *Tensor, *Vector, *Matrix and *Tensor3.
type fillable[T Element, S any] interface {
	Blocked
	fullLike(v T) S
}

// unitable is implemented by *Tensor, *Vector, *Matrix and *Tensor3.
type unitable[S any] interface {
	Blocked
	unitLike(one bool) S
}

// FullLike returns a new tensor with the rank, irreps, axes, symmetry and
// label of mold, with every stored element set to v. The result never
// shares storage with mold.
func FullLike[T Element, S fillable[T, S]](mold S, v T) S {
	return mold.fullLike(v)
}

// ZerosLike is FullLike with the additive identity.
func ZerosLike[S unitable[S]](mold S) S {
	return mold.unitLike(false)
}

// OnesLike is FullLike with the multiplicative identity.
func OnesLike[S unitable[S]](mold S) S {
	return mold.unitLike(true)
}
