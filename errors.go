package symtensor

import (
	"errors"
	"fmt"

	"github.com/hupe1980/symtensor/psio"
)

var (
	// ErrClosed is returned by operations on a closed Context.
	ErrClosed = errors.New("symtensor: context closed")

	// ErrFatal marks unit lifecycle violations: opening an open unit,
	// closing or using a closed one, or a unit held by another computation.
	// The underlying psio error stays reachable via errors.Is.
	ErrFatal = errors.New("symtensor: fatal resource state")
)

// translateError wraps psio state errors in ErrFatal.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if psio.IsStateError(err) && !errors.Is(err, ErrFatal) {
		return fmt.Errorf("%w: %w", ErrFatal, err)
	}
	return err
}
