package dpd

import (
	"fmt"
	"strings"

	"github.com/hupe1980/symtensor/linalg"
)

// SpaceID identifies an orbital space registered with a Store.
type SpaceID int

type space struct {
	name    string
	dimpi   linalg.Dimension
	virtual bool
}

// AddSpace registers an orbital space with per-irrep sizes dimpi. Virtual
// spaces count towards a block's virtual-index total for cache eligibility.
//
// Space names identify blocks in unit files. Registering a name again with
// the same sizes and flag returns the existing id; anything else fails with
// ErrSpaceConflict.
func (s *Store) AddSpace(name string, dimpi linalg.Dimension, virtual bool) (SpaceID, error) {
	if name == "" || strings.ContainsAny(name, "|,") {
		return 0, fmt.Errorf("%w: %q", ErrSpaceName, name)
	}
	if dimpi.N() != s.nirrep {
		return 0, fmt.Errorf("%w: space %q has %d irreps, store has %d",
			linalg.ErrNirrepMismatch, name, dimpi.N(), s.nirrep)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sp := range s.spaces {
		if sp.name != name {
			continue
		}
		if !sp.dimpi.Equal(dimpi) || sp.virtual != virtual {
			return 0, fmt.Errorf("%w: %q is %v (virtual=%t), got %v (virtual=%t)",
				ErrSpaceConflict, name, sp.dimpi, sp.virtual, dimpi, virtual)
		}
		return SpaceID(id), nil
	}
	s.spaces = append(s.spaces, space{name: name, dimpi: dimpi.WithName(name), virtual: virtual})
	return SpaceID(len(s.spaces) - 1), nil
}

// Space returns the per-irrep sizes of id.
func (s *Store) Space(id SpaceID) (linalg.Dimension, error) {
	sp, err := s.space(id)
	if err != nil {
		return linalg.Dimension{}, err
	}
	return sp.dimpi, nil
}

func (s *Store) space(id SpaceID) (space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || int(id) >= len(s.spaces) {
		return space{}, fmt.Errorf("%w: %d", ErrUnknownSpace, id)
	}
	return s.spaces[id], nil
}

// PairDimension returns the per-irrep size of the pair space p⊗q:
// rowtot[h] = Σ_Gp p[Gp]·q[Gp^h].
func (s *Store) PairDimension(p, q SpaceID) (linalg.Dimension, error) {
	sp, err := s.space(p)
	if err != nil {
		return linalg.Dimension{}, err
	}
	sq, err := s.space(q)
	if err != nil {
		return linalg.Dimension{}, err
	}
	return pairDimension(sp.dimpi, sq.dimpi).WithName(sp.name + sq.name), nil
}

func pairDimension(p, q linalg.Dimension) linalg.Dimension {
	n := p.N()
	tot := make([]int, n)
	for h := 0; h < n; h++ {
		for gp := 0; gp < n; gp++ {
			tot[h] += p.At(gp) * q.At(gp^h)
		}
	}
	return linalg.NewDimension(tot...)
}

func virtuals(spaces ...space) int {
	n := 0
	for _, sp := range spaces {
		if sp.virtual {
			n++
		}
	}
	return n
}
