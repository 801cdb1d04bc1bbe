package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrIrrepOutOfRange is returned when an irrep index is >= nirrep.
	ErrIrrepOutOfRange = errors.New("irrep index out of range")

	// ErrAxisOutOfRange is returned when an axis index is >= rank.
	ErrAxisOutOfRange = errors.New("axis index out of range")

	// ErrIndexOutOfRange is returned when an element index lies outside its block.
	ErrIndexOutOfRange = errors.New("element index out of range")

	// ErrShapeMismatch is returned when a block does not have the expected shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDimensionMismatch is returned when contraction operands disagree on an inner dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNirrepMismatch is returned when axes or operands have different irrep counts.
	ErrNirrepMismatch = errors.New("nirrep mismatch")

	// ErrInvalidRank is returned for ranks outside 1..3.
	ErrInvalidRank = errors.New("invalid rank")

	// ErrInvalidFill is returned when a complex fill value is used for a real element type.
	ErrInvalidFill = errors.New("invalid fill value")

	// ErrInvalidSymmetry is returned when a symmetry label is not a valid irrep.
	ErrInvalidSymmetry = errors.New("invalid symmetry")
)

// IndexError reports an out-of-range index.
//
// The category (ErrIrrepOutOfRange, ErrAxisOutOfRange, ErrIndexOutOfRange)
// can be matched via errors.Is.
type IndexError struct {
	Kind  error
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %d (limit %d)", e.Kind, e.Index, e.Limit)
}

func (e *IndexError) Unwrap() error { return e.Kind }

func irrepError(h, nirrep int) error {
	return &IndexError{Kind: ErrIrrepOutOfRange, Index: h, Limit: nirrep}
}

// ShapeError reports a shape disagreement between an expected and an actual shape.
type ShapeError struct {
	Kind     error
	Irrep    int
	Expected []int
	Actual   []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v in irrep %d: expected %v, got %v", e.Kind, e.Irrep, e.Expected, e.Actual)
}

func (e *ShapeError) Unwrap() error { return e.Kind }
