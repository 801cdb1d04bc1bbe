package dpd

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hupe1980/symtensor/psio"
)

// Reference is the reference wavefunction type a cache list is built for.
type Reference uint8

const (
	RHF Reference = iota
	ROHF
	UHF
)

func (r Reference) String() string {
	switch r {
	case RHF:
		return "RHF"
	case ROHF:
		return "ROHF"
	case UHF:
		return "UHF"
	default:
		return fmt.Sprintf("Reference(%d)", uint8(r))
	}
}

// ParseReference parses "rhf", "rohf" or "uhf" in any case.
func ParseReference(s string) (Reference, error) {
	switch strings.ToUpper(s) {
	case "RHF":
		return RHF, nil
	case "ROHF":
		return ROHF, nil
	case "UHF":
		return UHF, nil
	}
	return 0, fmt.Errorf("dpd: unknown reference %q", s)
}

// MaxCacheLevel caches every block except <VV|VV>.
const MaxCacheLevel = 4

// DefaultCacheUnits are the units whose buffers may be cached.
var DefaultCacheUnits = []psio.Unit{
	psio.UnitCCOEI,
	psio.UnitCCAInts, psio.UnitCCBInts, psio.UnitCCCInts,
	psio.UnitCCDInts, psio.UnitCCEInts, psio.UnitCCFInts,
	psio.UnitCCDenom, psio.UnitCCTAmps, psio.UnitCCLAmps, psio.UnitCCHBar,
}

// TileInfo describes a block for eligibility decisions.
type TileInfo struct {
	Unit  psio.Unit
	Label string
	// Row and Col name the row and column space (or pair) of the buffer.
	Row, Col string
	// Virtuals counts the virtual spaces among the buffer's indices.
	Virtuals int
	Bytes    int
}

// ruleEnv is the environment cache rules are evaluated in.
type ruleEnv struct {
	Unit     int    `expr:"unit"`
	Label    string `expr:"label"`
	Row      string `expr:"row"`
	Col      string `expr:"col"`
	Virtuals int    `expr:"virtuals"`
	Level    int    `expr:"level"`
	Bytes    int    `expr:"bytes"`
	Ref      string `expr:"ref"`
}

// CacheListOption configures a CacheList.
type CacheListOption func(*cacheListOptions)

type cacheListOptions struct {
	units []psio.Unit
	rule  string
}

// WithCacheUnits replaces DefaultCacheUnits.
func WithCacheUnits(units ...psio.Unit) CacheListOption {
	return func(o *cacheListOptions) {
		o.units = units
	}
}

// WithCacheRule sets a boolean expression deciding eligibility instead of
// the level heuristic, e.g. `label startsWith "D " && bytes < 1<<20`.
// <VV|VV> blocks and units outside the list are never cached.
func WithCacheRule(rule string) CacheListOption {
	return func(o *cacheListOptions) {
		o.rule = rule
	}
}

// CacheList decides which buffer blocks a Store keeps resident.
//
// At level L a block in a listed unit is cached when fewer than L of its
// indices are virtual. Level 0 disables caching.
type CacheList struct {
	ref     Reference
	level   int
	units   *roaring.Bitmap
	rule    *vm.Program
	deleted atomic.Bool
}

// NewCacheList builds the cache list for ref at the given level (0..4).
func NewCacheList(ref Reference, level int, opts ...CacheListOption) (*CacheList, error) {
	if level < 0 || level > MaxCacheLevel {
		return nil, fmt.Errorf("dpd: cache level %d out of range 0..%d", level, MaxCacheLevel)
	}
	o := cacheListOptions{units: DefaultCacheUnits}
	for _, opt := range opts {
		opt(&o)
	}

	cl := &CacheList{ref: ref, level: level, units: roaring.New()}
	for _, u := range o.units {
		cl.units.Add(uint32(u))
	}
	if o.rule != "" {
		prog, err := expr.Compile(o.rule, expr.Env(ruleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("dpd: compile cache rule: %w", err)
		}
		cl.rule = prog
	}
	return cl, nil
}

// Reference returns the reference type the list was built for.
func (cl *CacheList) Reference() Reference { return cl.ref }

// Level returns the cache level.
func (cl *CacheList) Level() int { return cl.level }

// Cacheable reports whether buffers in u may be cached at all.
func (cl *CacheList) Cacheable(u psio.Unit) bool {
	return !cl.deleted.Load() && cl.units.Contains(uint32(u))
}

// Eligible reports whether the described block should stay resident.
func (cl *CacheList) Eligible(info TileInfo) (bool, error) {
	if cl.deleted.Load() {
		return false, ErrCacheListDeleted
	}
	if !cl.units.Contains(uint32(info.Unit)) || info.Virtuals >= MaxCacheLevel {
		return false, nil
	}
	if cl.rule == nil {
		return info.Virtuals < cl.level, nil
	}
	out, err := expr.Run(cl.rule, ruleEnv{
		Unit:     int(info.Unit),
		Label:    info.Label,
		Row:      info.Row,
		Col:      info.Col,
		Virtuals: info.Virtuals,
		Level:    cl.level,
		Bytes:    info.Bytes,
		Ref:      cl.ref.String(),
	})
	if err != nil {
		return false, fmt.Errorf("dpd: evaluate cache rule: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Delete retires the list. Later calls are no-ops.
func (cl *CacheList) Delete() {
	cl.deleted.Store(true)
}

// Deleted reports whether Delete was called.
func (cl *CacheList) Deleted() bool { return cl.deleted.Load() }
