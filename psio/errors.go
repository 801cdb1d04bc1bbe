package psio

import (
	"errors"
	"fmt"
)

var (
	// ErrUnitOpen is returned when opening a unit that is already open.
	ErrUnitOpen = errors.New("unit already open")
	// ErrUnitClosed is returned when closing or accessing a unit that is not open.
	ErrUnitClosed = errors.New("unit not open")
	// ErrUnitBusy is returned when another computation holds the unit file.
	ErrUnitBusy = errors.New("unit locked by another computation")
	// ErrNoEntry is returned when reading a missing TOC entry.
	ErrNoEntry = errors.New("no such entry")
	// ErrCorrupt is returned when a unit file's trailer or TOC fails validation.
	ErrCorrupt = errors.New("corrupt unit file")
	// ErrInvalidUnit is returned for unit numbers out of range.
	ErrInvalidUnit = errors.New("invalid unit number")
)

// UnitError records a failed unit operation.
type UnitError struct {
	Op   string
	Unit Unit
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("psio: %s %s: %v", e.Op, e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// IsStateError reports whether err is a unit lifecycle violation (double
// open, use of a closed unit, or a busy unit). These indicate a programming
// error rather than an I/O failure.
func IsStateError(err error) bool {
	return errors.Is(err, ErrUnitOpen) || errors.Is(err, ErrUnitClosed) || errors.Is(err, ErrUnitBusy)
}
