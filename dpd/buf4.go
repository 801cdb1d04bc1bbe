package dpd

import (
	"fmt"

	"github.com/hupe1980/symtensor/internal/cache"
	"github.com/hupe1980/symtensor/linalg"
	"github.com/hupe1980/symtensor/psio"
)

// Buf4 is a four-index buffer <pq|rs> stored as a matrix over the row pair
// space p⊗q and the column pair space r⊗s. Block h holds
// rowtot[h] x coltot[h^sym] elements.
type Buf4[T linalg.Real] struct {
	buffer[T]
	p, q, r, s SpaceID
}

// pairKey names a space pair in cache keys and unit entries.
func pairKey(p, q space) string { return p.name + "," + q.name }

// InitBuf4 returns a handle on the four-index buffer label in unit u.
// Blocks never written read as zeros.
func InitBuf4[T linalg.Real](st *Store, u psio.Unit, label string, p, q, r, s SpaceID, sym int) (*Buf4[T], error) {
	if err := st.check(); err != nil {
		return nil, err
	}
	if sym < 0 || sym >= st.nirrep {
		return nil, fmt.Errorf("%w: symmetry %d", linalg.ErrInvalidSymmetry, sym)
	}
	var sp [4]space
	for i, id := range []SpaceID{p, q, r, s} {
		x, err := st.space(id)
		if err != nil {
			return nil, err
		}
		sp[i] = x
	}
	rowName, colName := sp[0].name+sp[1].name, sp[2].name+sp[3].name
	return &Buf4[T]{
		buffer: buffer[T]{
			s:        st,
			kind:     cache.KindBuf4,
			unit:     u,
			label:    label,
			row:      pairKey(sp[0], sp[1]),
			col:      pairKey(sp[2], sp[3]),
			rowName:  rowName,
			colName:  colName,
			rowspi:   pairDimension(sp[0].dimpi, sp[1].dimpi).WithName(rowName),
			colspi:   pairDimension(sp[2].dimpi, sp[3].dimpi).WithName(colName),
			sym:      sym,
			virtuals: virtuals(sp[:]...),
		},
		p: p, q: q, r: r, s: s,
	}, nil
}

// Spaces returns the four index spaces.
func (b *Buf4[T]) Spaces() (p, q, r, s SpaceID) { return b.p, b.q, b.r, b.s }
