package dpd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hupe1980/symtensor/internal/cache"
	"github.com/hupe1980/symtensor/internal/codec"
	"github.com/hupe1980/symtensor/internal/resource"
	"github.com/hupe1980/symtensor/psio"
)

// Policy selects which unpinned tile is evicted under memory pressure.
type Policy = cache.Policy

const (
	PolicyLRU      = cache.PolicyLRU
	PolicyPriority = cache.PolicyPriority
)

// Compression selects how tiles are compressed on disk.
type Compression = codec.Compression

const (
	CompressionNone = codec.CompressionNone
	CompressionLZ4  = codec.CompressionLZ4
	CompressionZSTD = codec.CompressionZSTD
)

// CacheStats holds tile cache counters.
type CacheStats = cache.Stats

// Config configures a Store.
type Config struct {
	// NIrrep is the number of irreps of every space (1, 2, 4 or 8).
	NIrrep int
	// Manager holds the units buffers live in. Required.
	Manager *psio.Manager
	// CacheList selects resident blocks. Nil disables caching.
	CacheList *CacheList
	Policy    Policy
	// Priority lists buffer labels from most to least valuable for
	// PolicyPriority. Unlisted labels are evicted first.
	Priority []string
	// Controller bounds resident tile memory. Nil means unlimited.
	Controller  *resource.Controller
	Compression Compression
	Observer    Observer
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Store pages symmetry blocks of File2 and Buf4 buffers between psio units
// and a bounded in-memory tile cache.
type Store struct {
	cfg    Config
	nirrep int
	log    *slog.Logger
	obs    Observer
	tiles  *cache.TileCache
	prio   map[string]int

	// tileMu serializes the lookup-or-load of resident tiles.
	tileMu sync.Mutex

	mu       sync.Mutex
	spaces   []space
	eligible map[cache.Key]bool
	bypass   map[cache.Kind]bool
	closed   bool
}

// NewStore returns a Store and hooks it into cfg.Manager so resident tiles
// of a unit are flushed (or discarded) when the unit closes.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Manager == nil {
		return nil, errors.New("dpd: config requires a psio manager")
	}
	if n := cfg.NIrrep; n < 1 || n > 8 || n&(n-1) != 0 {
		return nil, fmt.Errorf("dpd: nirrep %d is not 1, 2, 4 or 8", n)
	}
	if cfg.CacheList != nil && cfg.CacheList.Deleted() {
		return nil, ErrCacheListDeleted
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		cfg:      cfg,
		nirrep:   cfg.NIrrep,
		log:      cfg.Logger,
		obs:      cfg.Observer,
		prio:     make(map[string]int, len(cfg.Priority)),
		eligible: make(map[cache.Key]bool),
		bypass:   make(map[cache.Kind]bool),
	}
	for i, label := range cfg.Priority {
		if _, ok := s.prio[label]; !ok {
			s.prio[label] = len(cfg.Priority) - i
		}
	}
	s.tiles = cache.New(cache.Config{
		Controller: cfg.Controller,
		Policy:     cfg.Policy,
		Writeback:  s.writeback,
		OnEvict: func(k cache.Key, dirty bool) {
			s.obs.RecordEviction(dirty)
			s.log.Debug("tile evicted", "tile", k.String(), "dirty", dirty)
		},
	})
	cfg.Manager.OnClose(s.unitClosing)
	return s, nil
}

// NIrrep returns the number of irreps.
func (s *Store) NIrrep() int { return s.nirrep }

// Manager returns the unit manager buffers are paged to.
func (s *Store) Manager() *psio.Manager { return s.cfg.Manager }

// Stats returns tile cache counters.
func (s *Store) Stats() CacheStats { return s.tiles.Stats() }

func (s *Store) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) priority(label string) int { return s.prio[label] }

// cacheable reports whether the block behind ref should stay resident.
// Decisions are memoized per block.
func (s *Store) cacheable(ref tileRef) bool {
	cl := s.cfg.CacheList
	if cl == nil || cl.Deleted() {
		return false
	}
	s.mu.Lock()
	if s.bypass[ref.key.Kind] {
		s.mu.Unlock()
		return false
	}
	ok, seen := s.eligible[ref.key]
	s.mu.Unlock()
	if seen {
		return ok
	}

	ok, err := cl.Eligible(ref.info)
	if err != nil {
		if !errors.Is(err, ErrCacheListDeleted) {
			s.log.Warn("cache rule failed, block not cached", "tile", ref.key.String(), "error", err)
		}
		return false
	}
	s.mu.Lock()
	s.eligible[ref.key] = ok
	s.mu.Unlock()
	return ok
}

func (s *Store) writeback(k cache.Key, v any) error {
	t, ok := v.(*tile)
	if !ok {
		return fmt.Errorf("dpd: unexpected tile value %T", v)
	}
	return s.writeTile(context.Background(), k, t)
}

// unitClosing runs before psio closes u. Kept units receive every dirty
// tile; discarded units lose them.
func (s *Store) unitClosing(u psio.Unit, keep bool) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil
	}

	match := func(k cache.Key) bool { return k.Unit == int(u) }
	var err error
	if keep {
		err = s.tiles.Flush(match)
	}
	pinned, derr := s.tiles.Drop(match, keep)
	if pinned > 0 {
		s.log.Warn("unit closed with pinned tiles", "unit", int(u), "pinned", pinned)
	}
	s.log.Debug("unit tiles released", "unit", int(u), "keep", keep)
	return errors.Join(err, derr)
}

// closeKind flushes and evicts every tile of kind k and stops caching it.
func (s *Store) closeKind(k cache.Kind) error {
	s.mu.Lock()
	if s.closed || s.bypass[k] {
		s.mu.Unlock()
		return nil
	}
	s.bypass[k] = true
	s.mu.Unlock()

	match := func(key cache.Key) bool { return key.Kind == k }
	err := s.tiles.Flush(match)
	_, derr := s.tiles.Drop(match, true)
	s.log.Debug("tile cache closed", "kind", k.String())
	return errors.Join(err, derr)
}

// File2CacheClose writes back and evicts every resident File2 block. Later
// File2 access is written through. Calling it again is a no-op.
func (s *Store) File2CacheClose() error { return s.closeKind(cache.KindFile2) }

// File4CacheClose does for Buf4 blocks what File2CacheClose does for File2.
func (s *Store) File4CacheClose() error { return s.closeKind(cache.KindBuf4) }

// Flush writes back dirty tiles of every open unit. Tiles stay resident.
func (s *Store) Flush() error {
	if err := s.check(); err != nil {
		return err
	}
	return s.tiles.Flush(nil)
}

// Close flushes and evicts all tiles. Units stay open. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.tiles.Flush(nil)
	_, derr := s.tiles.Drop(nil, true)
	return errors.Join(err, derr)
}
