package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symtensor/internal/resource"
)

type sink struct {
	mu      sync.Mutex
	written map[Key]any
	fail    error
}

func newSink() *sink { return &sink{written: make(map[Key]any)} }

func (s *sink) writeback(key Key, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.written[key] = v
	return nil
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

func key(label string, h int) Key {
	return Key{Kind: KindBuf4, Unit: 127, Label: label, Irrep: h}
}

func TestTileCache_AcquireRelease(t *testing.T) {
	c := New(Config{})

	_, ok := c.Acquire(key("D", 0))
	assert.False(t, ok)

	require.NoError(t, c.Insert(key("D", 0), []float64{1, 2}, 16, 0, false))
	require.NoError(t, c.Release(key("D", 0), false))

	v, ok := c.Acquire(key("D", 0))
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, v)
	require.NoError(t, c.Release(key("D", 0), false))

	st := c.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, 1, st.Resident)
	assert.Equal(t, int64(16), st.Bytes)

	assert.ErrorIs(t, c.Release(key("X", 0), false), ErrNotResident)
}

func TestTileCache_LRUEviction(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 32})
	s := newSink()
	var evicted []Key
	c := New(Config{Controller: rc, Writeback: s.writeback, OnEvict: func(k Key, dirty bool) {
		evicted = append(evicted, k)
	}})

	require.NoError(t, c.Insert(key("A", 0), "a", 16, 0, false))
	require.NoError(t, c.Release(key("A", 0), false))
	require.NoError(t, c.Insert(key("B", 0), "b", 16, 0, false))
	require.NoError(t, c.Release(key("B", 0), true))

	// Touch A so B becomes least recent.
	_, ok := c.Acquire(key("A", 0))
	require.True(t, ok)
	require.NoError(t, c.Release(key("A", 0), false))

	require.NoError(t, c.Insert(key("C", 0), "c", 16, 0, false))
	assert.Equal(t, []Key{key("B", 0)}, evicted)
	assert.Equal(t, "b", s.written[key("B", 0)], "dirty victim written back")
	assert.Equal(t, int64(32), rc.MemoryUsage())

	st := c.Stats()
	assert.Equal(t, int64(1), st.Evictions)
	assert.Equal(t, int64(1), st.DirtyEvictions)
}

func TestTileCache_PriorityEviction(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 30})
	c := New(Config{Controller: rc, Policy: PolicyPriority})

	require.NoError(t, c.Insert(key("low", 0), 1, 10, 1, false))
	require.NoError(t, c.Insert(key("high", 0), 2, 10, 9, false))
	require.NoError(t, c.Insert(key("mid", 0), 3, 10, 5, false))
	for _, l := range []string{"low", "high", "mid"} {
		require.NoError(t, c.Release(key(l, 0), false))
	}

	require.NoError(t, c.Insert(key("new", 0), 4, 10, 5, false))
	_, ok := c.Acquire(key("low", 0))
	assert.False(t, ok)
	_, ok = c.Acquire(key("high", 0))
	assert.True(t, ok)
}

func TestTileCache_PinnedNeverEvicted(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	c := New(Config{Controller: rc})

	require.NoError(t, c.Insert(key("A", 0), "a", 16, 0, false))
	err := c.Insert(key("B", 0), "b", 8, 0, false)
	assert.ErrorIs(t, err, ErrNoSpace)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	require.NoError(t, c.Release(key("A", 0), false))
	require.NoError(t, c.Insert(key("B", 0), "b", 8, 0, false))
	assert.Equal(t, 1, c.Len())
}

func TestTileCache_ReinsertGrows(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 24})
	c := New(Config{Controller: rc})

	require.NoError(t, c.Insert(key("A", 0), "a", 8, 0, false))
	require.NoError(t, c.Release(key("A", 0), false))
	require.NoError(t, c.Insert(key("B", 0), "b", 8, 0, false))
	require.NoError(t, c.Release(key("B", 0), false))

	// A is the LRU victim, but growing A must evict B instead.
	require.NoError(t, c.Insert(key("A", 0), "a2", 20, 0, false))
	v, ok := c.Acquire(key("A", 0))
	require.True(t, ok)
	assert.Equal(t, "a2", v)
	_, ok = c.Acquire(key("B", 0))
	assert.False(t, ok)
	assert.Equal(t, int64(20), rc.MemoryUsage())
}

func TestTileCache_Flush(t *testing.T) {
	s := newSink()
	rc := resource.NewController(resource.Config{FlushWorkers: 4})
	c := New(Config{Controller: rc, Writeback: s.writeback})

	for h := 0; h < 8; h++ {
		require.NoError(t, c.Insert(key("T2", h), h, 8, 0, true))
		require.NoError(t, c.Release(key("T2", h), false))
	}
	require.NoError(t, c.Insert(key("F", 0), "f", 8, 0, true))
	require.NoError(t, c.Release(key("F", 0), false))

	require.NoError(t, c.Flush(func(k Key) bool { return k.Label == "T2" }))
	assert.Equal(t, 8, s.count())
	assert.False(t, c.IsDirty(key("T2", 3)))
	assert.True(t, c.IsDirty(key("F", 0)))
	assert.Equal(t, 9, c.Len(), "flush keeps tiles resident")

	require.NoError(t, c.Flush(nil))
	assert.Equal(t, 9, s.count())
	assert.False(t, c.IsDirty(key("F", 0)))
}

func TestTileCache_FlushErrorKeepsDirty(t *testing.T) {
	s := newSink()
	s.fail = errors.New("disk full")
	c := New(Config{Writeback: s.writeback})

	require.NoError(t, c.Insert(key("A", 0), "a", 8, 0, true))
	require.NoError(t, c.Release(key("A", 0), false))

	assert.ErrorIs(t, c.Flush(nil), s.fail)
	assert.True(t, c.IsDirty(key("A", 0)))
}

func TestTileCache_Drop(t *testing.T) {
	s := newSink()
	c := New(Config{Writeback: s.writeback})

	require.NoError(t, c.Insert(key("A", 0), "a", 8, 0, true))
	require.NoError(t, c.Release(key("A", 0), false))
	require.NoError(t, c.Insert(key("B", 0), "b", 8, 0, true))
	require.NoError(t, c.Release(key("B", 0), false))
	require.NoError(t, c.Insert(key("P", 0), "p", 8, 0, false)) // stays pinned

	pinned, err := c.Drop(func(k Key) bool { return k.Label == "A" }, true)
	require.NoError(t, err)
	assert.Zero(t, pinned)
	assert.Equal(t, "a", s.written[key("A", 0)])

	pinned, err = c.Drop(nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, pinned)
	_, wrote := s.written[key("B", 0)]
	assert.False(t, wrote, "discarded without writeback")
	assert.Equal(t, 1, c.Len())
}
