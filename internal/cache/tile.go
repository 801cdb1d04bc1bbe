package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/symtensor/internal/resource"
)

// Config configures a TileCache.
type Config struct {
	// Controller accounts resident bytes. Nil means unlimited.
	Controller *resource.Controller
	Policy     Policy
	// Writeback persists dirty tiles on eviction and flush. Required for
	// dirty tiles.
	Writeback WritebackFunc
	// OnEvict is called after a tile leaves the cache because of memory
	// pressure.
	OnEvict func(key Key, dirty bool)
}

// TileCache keeps decoded buffer tiles resident within a memory budget.
//
// A tile is pinned from Insert or a successful Acquire until the matching
// Release. Pinned tiles are never evicted. Dirty tiles are written back
// before they leave the cache.
type TileCache struct {
	cfg Config

	mu      sync.Mutex
	items   map[Key]*entry
	byID    map[uint32]*entry
	lru     *list.List // front is most recent
	dirty   *roaring.Bitmap
	nextID  uint32
	bytes   int64
	evicted int64
	dirtyEv int64

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	id       uint32
	key      Key
	value    any
	size     int64
	priority int
	refs     int
	version  uint64
	elem     *list.Element
}

// New creates an empty TileCache.
func New(cfg Config) *TileCache {
	return &TileCache{
		cfg:   cfg,
		items: make(map[Key]*entry),
		byID:  make(map[uint32]*entry),
		lru:   list.New(),
		dirty: roaring.New(),
	}
}

// Acquire pins and returns a resident tile.
func (c *TileCache) Acquire(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	e.refs++
	c.lru.MoveToFront(e.elem)
	return e.value, true
}

// Insert makes value resident and pinned. Unpinned tiles are evicted until
// the controller admits size bytes. If key is already resident its value is
// replaced and the pin count incremented.
func (c *TileCache) Insert(key Key, value any, size int64, priority int, dirty bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.refs++ // pinned so reserve cannot pick it as a victim
		if err := c.reserve(size - e.size); err != nil {
			e.refs--
			return err
		}
		c.bytes += size - e.size
		e.value, e.size, e.priority = value, size, priority
		if dirty {
			c.markDirty(e)
		}
		c.lru.MoveToFront(e.elem)
		return nil
	}

	if err := c.reserve(size); err != nil {
		return err
	}
	e := &entry{id: c.nextID, key: key, value: value, size: size, priority: priority, refs: 1}
	c.nextID++
	e.elem = c.lru.PushFront(e)
	c.items[key] = e
	c.byID[e.id] = e
	c.bytes += size
	if dirty {
		c.markDirty(e)
	}
	return nil
}

// reserve acquires n bytes, evicting unpinned tiles as needed.
// Negative n releases memory.
func (c *TileCache) reserve(n int64) error {
	if n <= 0 {
		c.cfg.Controller.ReleaseMemory(-n)
		return nil
	}
	for {
		err := c.cfg.Controller.AcquireMemory(n)
		if err == nil {
			return nil
		}
		if !errors.Is(err, resource.ErrMemoryLimitExceeded) {
			return err
		}
		victim := c.victim()
		if victim == nil {
			return ErrNoSpace
		}
		if err := c.evict(victim); err != nil {
			return err
		}
	}
}

func (c *TileCache) victim() *entry {
	var best *entry
	for el := c.lru.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*entry)
		if e.refs > 0 {
			continue
		}
		if c.cfg.Policy == PolicyLRU {
			return e
		}
		if best == nil || e.priority < best.priority {
			best = e
		}
	}
	return best
}

func (c *TileCache) evict(e *entry) error {
	wasDirty := c.dirty.Contains(e.id)
	if wasDirty {
		if err := c.writeback(e); err != nil {
			return err
		}
	}
	c.remove(e)
	c.evicted++
	if wasDirty {
		c.dirtyEv++
	}
	if c.cfg.OnEvict != nil {
		c.cfg.OnEvict(e.key, wasDirty)
	}
	return nil
}

func (c *TileCache) writeback(e *entry) error {
	if c.cfg.Writeback == nil {
		return fmt.Errorf("dirty tile %s without writeback", e.key)
	}
	if err := c.cfg.Writeback(e.key, e.value); err != nil {
		return fmt.Errorf("write back %s: %w", e.key, err)
	}
	c.dirty.Remove(e.id)
	return nil
}

func (c *TileCache) remove(e *entry) {
	c.lru.Remove(e.elem)
	delete(c.items, e.key)
	delete(c.byID, e.id)
	c.dirty.Remove(e.id)
	c.bytes -= e.size
	c.cfg.Controller.ReleaseMemory(e.size)
}

func (c *TileCache) markDirty(e *entry) {
	e.version++
	c.dirty.Add(e.id)
}

// Release unpins a tile. dirty marks it modified.
func (c *TileCache) Release(key Key, dirty bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotResident, key)
	}
	if e.refs > 0 {
		e.refs--
	}
	if dirty {
		c.markDirty(e)
	}
	return nil
}

// IsDirty reports whether a resident tile has unflushed changes.
func (c *TileCache) IsDirty(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	return ok && c.dirty.Contains(e.id)
}

// Flush writes back every dirty tile matching match (all if nil). Tiles stay
// resident and become clean. Writebacks run on up to workers goroutines.
// Tiles must not be modified while they are being flushed.
func (c *TileCache) Flush(match func(Key) bool) error {
	type job struct {
		e       *entry
		version uint64
	}

	c.mu.Lock()
	var jobs []job
	it := c.dirty.Iterator()
	for it.HasNext() {
		e := c.byID[it.Next()]
		if e == nil || (match != nil && !match(e.key)) {
			continue
		}
		jobs = append(jobs, job{e: e, version: e.version})
	}
	wb := c.cfg.Writeback
	c.mu.Unlock()

	if len(jobs) == 0 {
		return nil
	}
	if wb == nil {
		return fmt.Errorf("%d dirty tiles without writeback", len(jobs))
	}

	done := make([]bool, len(jobs))
	var g errgroup.Group
	g.SetLimit(c.cfg.Controller.FlushWorkers())
	for i, j := range jobs {
		g.Go(func() error {
			if err := wb(j.e.key, j.e.value); err != nil {
				return fmt.Errorf("write back %s: %w", j.e.key, err)
			}
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	for i, j := range jobs {
		if done[i] && j.e.version == j.version {
			c.dirty.Remove(j.e.id)
		}
	}
	c.mu.Unlock()
	return err
}

// Drop removes every unpinned tile matching match (all if nil). With
// writeback, dirty tiles are persisted first; otherwise their changes are
// discarded. Pinned tiles are skipped and counted in the returned number.
func (c *TileCache) Drop(match func(Key) bool, writeback bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []*entry
	pinned := 0
	for _, e := range c.items {
		if match != nil && !match(e.key) {
			continue
		}
		if e.refs > 0 {
			pinned++
			continue
		}
		victims = append(victims, e)
	}
	for _, e := range victims {
		if writeback && c.dirty.Contains(e.id) {
			if err := c.writeback(e); err != nil {
				return pinned, err
			}
		}
		c.remove(e)
	}
	return pinned, nil
}

// Len returns the number of resident tiles.
func (c *TileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cache counters.
func (c *TileCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Evictions:      c.evicted,
		DirtyEvictions: c.dirtyEv,
		Resident:       len(c.items),
		Bytes:          c.bytes,
	}
}
