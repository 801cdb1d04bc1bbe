package dpd

import (
	"fmt"

	"github.com/hupe1980/symtensor/internal/cache"
	"github.com/hupe1980/symtensor/linalg"
	"github.com/hupe1980/symtensor/psio"
)

// File2 is a two-index buffer over spaces p and q. Block h holds
// p[h] x q[h^sym] elements.
type File2[T linalg.Real] struct {
	buffer[T]
	p, q SpaceID
}

// InitFile2 returns a handle on the two-index buffer label in unit u.
// Blocks never written read as zeros.
func InitFile2[T linalg.Real](s *Store, u psio.Unit, label string, p, q SpaceID, sym int) (*File2[T], error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if sym < 0 || sym >= s.nirrep {
		return nil, fmt.Errorf("%w: symmetry %d", linalg.ErrInvalidSymmetry, sym)
	}
	sp, err := s.space(p)
	if err != nil {
		return nil, err
	}
	sq, err := s.space(q)
	if err != nil {
		return nil, err
	}
	return &File2[T]{
		buffer: buffer[T]{
			s:        s,
			kind:     cache.KindFile2,
			unit:     u,
			label:    label,
			row:      sp.name,
			col:      sq.name,
			rowName:  sp.name,
			colName:  sq.name,
			rowspi:   sp.dimpi,
			colspi:   sq.dimpi,
			sym:      sym,
			virtuals: virtuals(sp, sq),
		},
		p: p,
		q: q,
	}, nil
}

// Spaces returns the row and column spaces.
func (f *File2[T]) Spaces() (p, q SpaceID) { return f.p, f.q }
