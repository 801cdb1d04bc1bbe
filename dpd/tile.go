package dpd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/symtensor/internal/cache"
	"github.com/hupe1980/symtensor/internal/codec"
	"github.com/hupe1980/symtensor/linalg"
	"github.com/hupe1980/symtensor/psio"
)

// tile is a resident block. data is []float32 or []float64.
type tile struct {
	rows, cols int
	data       any
}

func (t *tile) encode(c codec.Compression) ([]byte, error) {
	switch d := t.data.(type) {
	case []float64:
		return codec.EncodeTile(t.rows, t.cols, d, c)
	case []float32:
		return codec.EncodeTile(t.rows, t.cols, d, c)
	}
	return nil, fmt.Errorf("dpd: unsupported tile payload %T", t.data)
}

// tileRef addresses one symmetry block of a buffer.
type tileRef struct {
	key        cache.Key
	rows, cols int
	info       TileInfo
}

func (r tileRef) unit() psio.Unit { return psio.Unit(r.key.Unit) }

// entryName is the psio entry a block is stored under. It uses space names,
// not SpaceIDs, so retained units are readable by a later store.
func entryName(k cache.Key) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d", k.Kind, k.Label, k.Row, k.Col, k.Irrep)
}

func tileBytes[T linalg.Real](ref tileRef) int64 {
	return int64(ref.rows * ref.cols * linalg.KindOf[T]().Size())
}

func tileData[T linalg.Real](v any, ref tileRef) ([]T, error) {
	t, ok := v.(*tile)
	if !ok {
		return nil, fmt.Errorf("dpd: unexpected tile value %T", v)
	}
	d, ok := t.data.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: tile %s holds %T", ErrBufferShape, ref.key, t.data)
	}
	return d, nil
}

func (s *Store) checkUnit(op string, u psio.Unit) error {
	if err := s.check(); err != nil {
		return err
	}
	if !s.cfg.Manager.IsOpen(u) {
		return &psio.UnitError{Op: op, Unit: u, Err: psio.ErrUnitClosed}
	}
	return nil
}

// readTile loads a block from its unit. A block never written reads as zeros.
func readTile[T linalg.Real](ctx context.Context, s *Store, ref tileRef) ([]T, error) {
	start := time.Now()
	buf, err := s.cfg.Manager.ReadEntry(ctx, ref.unit(), entryName(ref.key))
	if errors.Is(err, psio.ErrNoEntry) {
		return make([]T, ref.rows*ref.cols), nil
	}
	if err != nil {
		s.obs.RecordTileRead(0, time.Since(start), err)
		return nil, err
	}
	hdr, data, err := codec.DecodeTile[T](buf)
	s.obs.RecordTileRead(len(buf), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("dpd: tile %s: %w", ref.key, err)
	}
	if hdr.Rows != ref.rows || hdr.Cols != ref.cols {
		return nil, fmt.Errorf("%w: tile %s stored as %dx%d, want %dx%d",
			ErrBufferShape, ref.key, hdr.Rows, hdr.Cols, ref.rows, ref.cols)
	}
	return data, nil
}

func (s *Store) writeTile(ctx context.Context, k cache.Key, t *tile) error {
	buf, err := t.encode(s.cfg.Compression)
	if err != nil {
		return err
	}
	start := time.Now()
	err = s.cfg.Manager.WriteEntry(ctx, psio.Unit(k.Unit), entryName(k), buf)
	s.obs.RecordTileWrite(len(buf), time.Since(start), err)
	return err
}

// pin returns the resident, pinned tile behind ref, loading it on a miss.
// When the budget has no room resident is false and data is a private copy
// that the caller must not release.
func pin[T linalg.Real](ctx context.Context, s *Store, ref tileRef) (data []T, resident bool, err error) {
	s.tileMu.Lock()
	defer s.tileMu.Unlock()

	if v, ok := s.tiles.Acquire(ref.key); ok {
		s.obs.RecordCacheHit()
		d, err := tileData[T](v, ref)
		if err != nil {
			return nil, false, errors.Join(err, s.tiles.Release(ref.key, false))
		}
		return d, true, nil
	}
	s.obs.RecordCacheMiss()

	d, err := readTile[T](ctx, s, ref)
	if err != nil {
		return nil, false, err
	}
	err = s.tiles.Insert(ref.key, &tile{rows: ref.rows, cols: ref.cols, data: d},
		tileBytes[T](ref), s.priority(ref.key.Label), false)
	if errors.Is(err, cache.ErrNoSpace) {
		s.log.Debug("tile not admitted", "tile", ref.key.String(), "bytes", tileBytes[T](ref))
		return d, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// fetch returns a private copy of the block behind ref.
func fetch[T linalg.Real](ctx context.Context, s *Store, ref tileRef) ([]T, error) {
	if err := s.checkUnit("read", ref.unit()); err != nil {
		return nil, err
	}
	if !s.cacheable(ref) {
		return readTile[T](ctx, s, ref)
	}
	d, resident, err := pin[T](ctx, s, ref)
	if err != nil || !resident {
		return d, err
	}
	out := slices.Clone(d)
	return out, s.tiles.Release(ref.key, false)
}

// store replaces the block behind ref with data.
func store[T linalg.Real](ctx context.Context, s *Store, ref tileRef, data []T) error {
	if err := s.checkUnit("write", ref.unit()); err != nil {
		return err
	}
	if s.cacheable(ref) {
		s.tileMu.Lock()
		err := s.tiles.Insert(ref.key, &tile{rows: ref.rows, cols: ref.cols, data: slices.Clone(data)},
			tileBytes[T](ref), s.priority(ref.key.Label), true)
		s.tileMu.Unlock()
		if err == nil {
			return s.tiles.Release(ref.key, false)
		}
		if !errors.Is(err, cache.ErrNoSpace) {
			return err
		}
	}
	return s.writeTile(ctx, ref.key, &tile{rows: ref.rows, cols: ref.cols, data: data})
}

// modify applies fn to the block behind ref in place and marks it dirty.
func modify[T linalg.Real](ctx context.Context, s *Store, ref tileRef, fn func([]T) error) error {
	if err := s.checkUnit("update", ref.unit()); err != nil {
		return err
	}
	var (
		d   []T
		err error
	)
	if s.cacheable(ref) {
		var resident bool
		d, resident, err = pin[T](ctx, s, ref)
		if err != nil {
			return err
		}
		if resident {
			ferr := fn(d)
			return errors.Join(ferr, s.tiles.Release(ref.key, true))
		}
	} else {
		d, err = readTile[T](ctx, s, ref)
		if err != nil {
			return err
		}
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.writeTile(ctx, ref.key, &tile{rows: ref.rows, cols: ref.cols, data: d})
}
