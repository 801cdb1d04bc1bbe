// Package resource governs the memory and I/O used by the tile store.
//
//   - Memory: resident tiles reserve their size from a budget. AcquireMemory
//     never blocks; on ErrMemoryLimitExceeded the cache evicts and retries.
//   - I/O: a token bucket caps unit-file throughput. RateLimitedWriter and
//     RateLimitedReaderAt wrap file handles.
//   - Flush parallelism: FlushWorkers bounds concurrent tile encoding.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    IOLimitBytesPerSec: 200 << 20,
//	})
//	if err := rc.AcquireMemory(tileBytes); err != nil {
//	    // evict, then retry
//	}
//	defer rc.ReleaseMemory(tileBytes)
//
// All methods are safe for concurrent use, and a nil *Controller turns every
// call into a no-op.
package resource
