package dpd

import (
	"errors"
	"fmt"

	"github.com/hupe1980/symtensor/internal/resource"
)

var (
	// ErrUnknownSpace is returned for a SpaceID the store did not issue.
	ErrUnknownSpace = errors.New("dpd: unknown orbital space")
	// ErrSpaceConflict is returned when a space name is registered again
	// with different sizes or a different virtual flag.
	ErrSpaceConflict = errors.New("dpd: orbital space redefined")
	// ErrSpaceName is returned for an empty space name or one containing
	// '|' or ','.
	ErrSpaceName = errors.New("dpd: invalid orbital space name")
	// ErrBufferShape is returned when a block or matrix does not match a
	// buffer's layout, or when two buffers do not conform.
	ErrBufferShape = errors.New("dpd: buffer shape mismatch")
	// ErrCacheListDeleted is returned when a deleted cache list is used.
	ErrCacheListDeleted = errors.New("dpd: cache list deleted")
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("dpd: store closed")
	// ErrBufferClosed is returned by operations on a closed buffer.
	ErrBufferClosed = errors.New("dpd: buffer closed")
	// ErrMemoryLimit is returned when a tile does not fit the memory budget
	// and cannot be written through either.
	ErrMemoryLimit = fmt.Errorf("dpd: %w", resource.ErrMemoryLimitExceeded)
)
