package symtensor

import (
	"github.com/hupe1980/symtensor/dpd"
	"github.com/hupe1980/symtensor/internal/fs"
)

// DefaultMemory is the tile cache budget used without WithMemory.
const DefaultMemory = 256 << 20

// DefaultCacheLevel caches blocks with fewer than two virtual indices.
const DefaultCacheLevel = 2

// FileSystem is the file system unit files and local archives live on.
type FileSystem = fs.FileSystem

// File is an open file of a FileSystem.
type File = fs.File

type options struct {
	scratchDir   string
	prefix       string
	nirrep       int
	memory       int64
	ioLimit      int64
	flushWorkers int
	ref          dpd.Reference
	cacheLevel   int
	cachePolicy  dpd.Policy
	priority     []string
	cacheRule    string
	compression  dpd.Compression
	logger       *Logger
	metrics      MetricsCollector
	fs           FileSystem
}

func defaultOptions() options {
	return options{
		nirrep:     1,
		memory:     DefaultMemory,
		ref:        dpd.RHF,
		cacheLevel: DefaultCacheLevel,
		logger:     NoopLogger(),
		metrics:    NoopMetricsCollector{},
		fs:         fs.Default,
	}
}

// Option configures a Context.
type Option func(*options)

// WithScratchDir sets the directory unit files are created in.
// Defaults to os.TempDir().
func WithScratchDir(dir string) Option {
	return func(o *options) {
		o.scratchDir = dir
	}
}

// WithFilePrefix names unit files "<prefix>.<unit>". Without it every
// context uses a prefix derived from its id, so retained files survive only
// if the same prefix is passed again.
func WithFilePrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithIrreps sets the number of irreps (1, 2, 4 or 8) of the point group.
func WithIrreps(n int) Option {
	return func(o *options) {
		o.nirrep = n
	}
}

// WithMemory sets the tile cache budget in bytes. 0 means unlimited.
func WithMemory(bytes int64) Option {
	return func(o *options) {
		o.memory = bytes
	}
}

// WithIOLimit caps unit I/O at bytesPerSec. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithFlushWorkers sets how many tiles are written back concurrently on
// flush and how many files Archive and Restore transfer at once.
func WithFlushWorkers(n int) Option {
	return func(o *options) {
		o.flushWorkers = n
	}
}

// WithReference sets the reference wavefunction the cache list is built for.
func WithReference(ref dpd.Reference) Option {
	return func(o *options) {
		o.ref = ref
	}
}

// WithCacheLevel sets the cache level (0..4). Level 0 disables caching.
func WithCacheLevel(level int) Option {
	return func(o *options) {
		o.cacheLevel = level
	}
}

// WithCacheType selects LRU or priority eviction.
func WithCacheType(p dpd.Policy) Option {
	return func(o *options) {
		o.cachePolicy = p
	}
}

// WithCachePriority lists buffer labels from most to least valuable for
// priority eviction.
func WithCachePriority(labels ...string) Option {
	return func(o *options) {
		o.priority = labels
	}
}

// WithCacheRule sets an expression deciding cache eligibility, evaluated
// over unit, label, row, col, virtuals, level, bytes and ref.
func WithCacheRule(rule string) Option {
	return func(o *options) {
		o.cacheRule = rule
	}
}

// WithCompression selects the compression of tiles written to units.
func WithCompression(c dpd.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithFileSystem replaces the local file system, e.g. for fault injection.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}
