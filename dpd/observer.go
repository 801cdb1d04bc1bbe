package dpd

import "time"

// Observer receives tile I/O and cache events. Every metrics collector of
// the root package satisfies it.
type Observer interface {
	RecordTileRead(bytes int, d time.Duration, err error)
	RecordTileWrite(bytes int, d time.Duration, err error)
	RecordCacheHit()
	RecordCacheMiss()
	RecordEviction(dirty bool)
}

type noopObserver struct{}

func (noopObserver) RecordTileRead(int, time.Duration, error)  {}
func (noopObserver) RecordTileWrite(int, time.Duration, error) {}
func (noopObserver) RecordCacheHit()                           {}
func (noopObserver) RecordCacheMiss()                          {}
func (noopObserver) RecordEviction(bool)                       {}
