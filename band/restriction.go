package band

import (
	"fmt"
	"sort"
)

// Restriction maps a level's full active-DOF vector to the reduced vector of
// its interface-band DOFs, together with the transposed scatter. Restrict
// followed by Extend acts as the identity on the band subspace and as zero
// outside it.
type Restriction struct {
	nFull int
	dofs  []int // strictly increasing level-local indices
}

// NewRestriction builds the restriction onto bandDofs inside a full space of
// nFull DOFs. The band may be empty. Indices are copied and sorted; duplicates
// or out-of-range entries indicate a broken selection upstream.
func NewRestriction(nFull int, bandDofs []int) (*Restriction, error) {
	if nFull < 0 {
		return nil, fmt.Errorf("restriction: negative space dimension %d: %w", nFull, ErrInvalidBandSelection)
	}
	dofs := make([]int, len(bandDofs))
	copy(dofs, bandDofs)
	sort.Ints(dofs)
	for k, d := range dofs {
		if d < 0 || d >= nFull {
			return nil, fmt.Errorf("restriction: band DOF %d outside [0,%d): %w", d, nFull, ErrInvalidBandSelection)
		}
		if k > 0 && dofs[k-1] == d {
			return nil, fmt.Errorf("restriction: duplicate band DOF %d: %w", d, ErrInvalidBandSelection)
		}
	}
	return &Restriction{nFull: nFull, dofs: dofs}, nil
}

// Len returns the band dimension.
func (r *Restriction) Len() int { return len(r.dofs) }

// FullLen returns the full-space dimension.
func (r *Restriction) FullLen() int { return r.nFull }

// Dofs returns the band's level-local DOF indices in ascending order. The
// slice is owned by the restriction and must not be mutated.
func (r *Restriction) Dofs() []int { return r.dofs }

// Restrict gathers dst[k] = full[dofs[k]].
func (r *Restriction) Restrict(full, dst []float64) {
	r.checkFull(len(full))
	r.checkBand(len(dst))
	for k, d := range r.dofs {
		dst[k] = full[d]
	}
}

// Extend scatters the band vector into the full space, zero outside the band.
func (r *Restriction) Extend(band, dst []float64) {
	r.checkBand(len(band))
	r.checkFull(len(dst))
	for i := range dst {
		dst[i] = 0
	}
	for k, d := range r.dofs {
		dst[d] = band[k]
	}
}

// AddScaled accumulates dst[dofs[k]] += alpha*band[k], leaving entries outside
// the band untouched. This is the update form used by the smoother's
// interface correction.
func (r *Restriction) AddScaled(dst []float64, alpha float64, band []float64) {
	r.checkBand(len(band))
	r.checkFull(len(dst))
	for k, d := range r.dofs {
		dst[d] += alpha * band[k]
	}
}

func (r *Restriction) checkFull(n int) {
	if n != r.nFull {
		panic(fmt.Sprintf("restriction: full vector has %d entries, space has %d", n, r.nFull))
	}
}

func (r *Restriction) checkBand(n int) {
	if n != len(r.dofs) {
		panic(fmt.Sprintf("restriction: band vector has %d entries, band has %d", n, len(r.dofs)))
	}
}
