// Package cache keeps decoded buffer tiles in memory.
//
// [TileCache] is a single-mutex cache keyed by buffer and irrep. Resident
// bytes are reserved from a resource.Controller. When the budget is
// exhausted, unpinned tiles are evicted in LRU or priority order, and dirty
// tiles are written back first. Dirty tiles are tracked in a roaring bitmap
// keyed by entry id, so a flush walks only the modified set.
package cache
