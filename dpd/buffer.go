package dpd

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/hupe1980/symtensor/internal/cache"
	"github.com/hupe1980/symtensor/linalg"
	"github.com/hupe1980/symtensor/psio"
)

// Buffer is the read view shared by File2 and Buf4.
type Buffer[T linalg.Real] interface {
	Label() string
	NIrrep() int
	Symmetry() int
	Shapes() [][]int
	Block(ctx context.Context, h int) (*linalg.Block[T], error)
}

// buffer implements the block operations of File2 and Buf4. Block h has
// rowspi[h] rows and colspi[h^sym] columns.
type buffer[T linalg.Real] struct {
	s        *Store
	kind     cache.Kind
	unit     psio.Unit
	label    string
	row, col string
	rowName  string
	colName  string
	rowspi   linalg.Dimension
	colspi   linalg.Dimension
	sym      int
	virtuals int
	closed   atomic.Bool
}

// Label returns the buffer label.
func (b *buffer[T]) Label() string { return b.label }

// Unit returns the unit the buffer is stored in.
func (b *buffer[T]) Unit() psio.Unit { return b.unit }

// Symmetry returns the irrep of the buffer.
func (b *buffer[T]) Symmetry() int { return b.sym }

// NIrrep returns the number of irreps.
func (b *buffer[T]) NIrrep() int { return b.rowspi.N() }

// Rowspi returns the rows per irrep.
func (b *buffer[T]) Rowspi() linalg.Dimension { return b.rowspi }

// Colspi returns the columns per irrep.
func (b *buffer[T]) Colspi() linalg.Dimension { return b.colspi }

// Shapes returns the [rows, cols] shape of every block.
func (b *buffer[T]) Shapes() [][]int {
	out := make([][]int, b.NIrrep())
	for h := range out {
		out[h] = b.shape(h)
	}
	return out
}

func (b *buffer[T]) shape(h int) []int {
	return []int{b.rowspi.At(h), b.colspi.At(h ^ b.sym)}
}

func (b *buffer[T]) ref(h int) (tileRef, error) {
	if b.closed.Load() {
		return tileRef{}, fmt.Errorf("%w: %s", ErrBufferClosed, b.label)
	}
	if h < 0 || h >= b.NIrrep() {
		return tileRef{}, &linalg.IndexError{Kind: linalg.ErrIrrepOutOfRange, Index: h, Limit: b.NIrrep()}
	}
	rows, cols := b.rowspi.At(h), b.colspi.At(h^b.sym)
	return tileRef{
		key:  cache.Key{Kind: b.kind, Unit: int(b.unit), Label: b.label, Row: b.row, Col: b.col, Irrep: h},
		rows: rows,
		cols: cols,
		info: TileInfo{
			Unit:     b.unit,
			Label:    b.label,
			Row:      b.rowName,
			Col:      b.colName,
			Virtuals: b.virtuals,
			Bytes:    rows * cols * linalg.KindOf[T]().Size(),
		},
	}, nil
}

// Block returns a copy of block h.
func (b *buffer[T]) Block(ctx context.Context, h int) (*linalg.Block[T], error) {
	ref, err := b.ref(h)
	if err != nil {
		return nil, err
	}
	shape := []int{ref.rows, ref.cols}
	if ref.rows*ref.cols == 0 {
		return linalg.NewBlock[T](shape, 0), nil
	}
	data, err := fetch[T](ctx, b.s, ref)
	if err != nil {
		return nil, err
	}
	return linalg.BlockFrom(shape, data)
}

// SetBlock replaces block h with a copy of blk.
func (b *buffer[T]) SetBlock(ctx context.Context, h int, blk *linalg.Block[T]) error {
	ref, err := b.ref(h)
	if err != nil {
		return err
	}
	if blk == nil || !slices.Equal(blk.Shape, []int{ref.rows, ref.cols}) || len(blk.Data) != ref.rows*ref.cols {
		return fmt.Errorf("%w: %s block %d wants %dx%d", ErrBufferShape, b.label, h, ref.rows, ref.cols)
	}
	if ref.rows*ref.cols == 0 {
		return nil
	}
	return store(ctx, b.s, ref, blk.Data)
}

// Update applies fn to block h in place. The block passed to fn is only
// valid during the call and must not be modified concurrently.
func (b *buffer[T]) Update(ctx context.Context, h int, fn func(*linalg.Block[T]) error) error {
	ref, err := b.ref(h)
	if err != nil {
		return err
	}
	if ref.rows*ref.cols == 0 {
		return fn(linalg.NewBlock[T]([]int{ref.rows, ref.cols}, 0))
	}
	return modify(ctx, b.s, ref, func(data []T) error {
		return fn(&linalg.Block[T]{Shape: []int{ref.rows, ref.cols}, Data: data})
	})
}

// Zero sets every block to zero.
func (b *buffer[T]) Zero(ctx context.Context) error {
	for h := 0; h < b.NIrrep(); h++ {
		if err := b.SetBlock(ctx, h, linalg.NewBlock[T](b.shape(h), 0)); err != nil {
			return err
		}
	}
	return nil
}

// Scale multiplies every element by a.
func (b *buffer[T]) Scale(ctx context.Context, a T) error {
	for h := 0; h < b.NIrrep(); h++ {
		err := b.Update(ctx, h, func(blk *linalg.Block[T]) error {
			blk.Scale(a)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Matrix assembles the whole buffer into a matrix with the same layout.
// It fails with ErrMemoryLimit if the buffer is larger than the store's
// memory budget.
func (b *buffer[T]) Matrix(ctx context.Context) (*linalg.Matrix[T], error) {
	if limit := b.s.cfg.Controller.MemoryLimit(); limit > 0 {
		var total int64
		for h := 0; h < b.NIrrep(); h++ {
			s := b.shape(h)
			total += int64(s[0] * s[1] * linalg.KindOf[T]().Size())
		}
		if total > limit {
			return nil, fmt.Errorf("%w: %s needs %d bytes, budget %d", ErrMemoryLimit, b.label, total, limit)
		}
	}
	m, err := linalg.NewMatrix[T](b.rowspi, b.colspi, linalg.WithSymmetry(b.sym), linalg.WithLabel(b.label))
	if err != nil {
		return nil, err
	}
	for h := 0; h < b.NIrrep(); h++ {
		blk, err := b.Block(ctx, h)
		if err != nil {
			return nil, err
		}
		if err := m.SetBlock(h, blk); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetMatrix writes every block of m, which must have the buffer's layout.
func (b *buffer[T]) SetMatrix(ctx context.Context, m *linalg.Matrix[T]) error {
	if m.Symmetry() != b.sym || !m.Rowspi().Equal(b.rowspi) || !m.Colspi().Equal(b.colspi) {
		return fmt.Errorf("%w: matrix %q does not match buffer %q", ErrBufferShape, m.Label(), b.label)
	}
	for h := 0; h < b.NIrrep(); h++ {
		blk, err := m.Block(h)
		if err != nil {
			return err
		}
		if err := b.SetBlock(ctx, h, blk); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the buffer handle. Its blocks stay in the unit and the
// cache; the handle rejects further use.
func (b *buffer[T]) Close() error {
	b.closed.Store(true)
	return nil
}
