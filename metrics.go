package symtensor

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Every MetricsCollector satisfies dpd.Observer.
type MetricsCollector interface {
	// RecordTileRead is called after a block is read from its unit.
	// bytes is the encoded size, err is nil if successful.
	RecordTileRead(bytes int, duration time.Duration, err error)

	// RecordTileWrite is called after a block is written to its unit.
	RecordTileWrite(bytes int, duration time.Duration, err error)

	// RecordCacheHit is called when a block is served from the tile cache.
	RecordCacheHit()

	// RecordCacheMiss is called when a cacheable block must be read.
	RecordCacheMiss()

	// RecordEviction is called when a tile leaves the cache under memory
	// pressure. dirty reports whether it was written back first.
	RecordEviction(dirty bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTileRead(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordTileWrite(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCacheHit()                           {}
func (NoopMetricsCollector) RecordCacheMiss()                          {}
func (NoopMetricsCollector) RecordEviction(bool)                       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReadCount       atomic.Int64
	ReadErrors      atomic.Int64
	ReadBytes       atomic.Int64
	ReadTotalNanos  atomic.Int64
	WriteCount      atomic.Int64
	WriteErrors     atomic.Int64
	WriteBytes      atomic.Int64
	WriteTotalNanos atomic.Int64
	CacheHits       atomic.Int64
	CacheMisses     atomic.Int64
	Evictions       atomic.Int64
	DirtyEvictions  atomic.Int64
}

// RecordTileRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileRead(bytes int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(bytes))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordTileWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileWrite(bytes int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(bytes))
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit() { b.CacheHits.Add(1) }

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss() { b.CacheMisses.Add(1) }

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction(dirty bool) {
	b.Evictions.Add(1)
	if dirty {
		b.DirtyEvictions.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:      b.ReadCount.Load(),
		ReadErrors:     b.ReadErrors.Load(),
		ReadBytes:      b.ReadBytes.Load(),
		ReadAvgNanos:   avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		WriteCount:     b.WriteCount.Load(),
		WriteErrors:    b.WriteErrors.Load(),
		WriteBytes:     b.WriteBytes.Load(),
		WriteAvgNanos:  avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		CacheHits:      b.CacheHits.Load(),
		CacheMisses:    b.CacheMisses.Load(),
		Evictions:      b.Evictions.Load(),
		DirtyEvictions: b.DirtyEvictions.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// HitRatio returns hits / (hits + misses), or 0 without lookups.
func (s BasicMetricsStats) HitRatio() float64 {
	n := s.CacheHits + s.CacheMisses
	if n == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(n)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount      int64
	ReadErrors     int64
	ReadBytes      int64
	ReadAvgNanos   int64
	WriteCount     int64
	WriteErrors    int64
	WriteBytes     int64
	WriteAvgNanos  int64
	CacheHits      int64
	CacheMisses    int64
	Evictions      int64
	DirtyEvictions int64
}
