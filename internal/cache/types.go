package cache

import (
	"errors"
	"fmt"

	"github.com/hupe1980/symtensor/internal/resource"
)

// ErrNoSpace is returned when a tile cannot be made resident because every
// other resident tile is pinned. It wraps resource.ErrMemoryLimitExceeded.
var ErrNoSpace = fmt.Errorf("tile cache full: %w", resource.ErrMemoryLimitExceeded)

// ErrNotResident is returned when releasing a tile that is not in the cache.
var ErrNotResident = errors.New("tile not resident")

// Kind separates file2 and buf4 key spaces.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindFile2        // one-electron (two-index) buffers
	KindBuf4         // two-electron (four-index) buffers
)

func (k Kind) String() string {
	switch k {
	case KindFile2:
		return "file2"
	case KindBuf4:
		return "buf4"
	default:
		return "unknown"
	}
}

// Key identifies one symmetry block of one buffer.
type Key struct {
	Kind  Kind
	Unit  int
	Label string
	// Row and Col name the buffer's row and column space (file2) or space
	// pair (buf4).
	Row, Col string
	Irrep    int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%s:%s:%s:%d", k.Kind, k.Unit, k.Label, k.Row, k.Col, k.Irrep)
}

// Policy selects the eviction victim among unpinned tiles.
type Policy uint8

const (
	// PolicyLRU evicts the least recently used tile.
	PolicyLRU Policy = iota
	// PolicyPriority evicts the tile with the lowest priority, least recently
	// used first among equals.
	PolicyPriority
)

func (p Policy) String() string {
	if p == PolicyPriority {
		return "priority"
	}
	return "lru"
}

// WritebackFunc persists a dirty tile. It may be called concurrently for
// different keys during Flush.
type WritebackFunc func(key Key, value any) error

// Stats holds cache counters.
type Stats struct {
	Hits           int64
	Misses         int64
	Evictions      int64
	DirtyEvictions int64
	Resident       int
	Bytes          int64
}
