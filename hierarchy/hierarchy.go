// Package hierarchy owns the multi-level state of the interface-aware
// multigrid method: per refinement level the sparse system matrix, the active
// degrees of freedom, the interface-band restriction, and the prolongation to
// the next-finer level. Active DOF sets differ at every level because the
// cut configuration changes under refinement, so every index stored here is
// level-local after compression (position in the active set).
package hierarchy

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/schruste/xfem-lite/band"
	"github.com/schruste/xfem-lite/utils"
)

// Level holds one refinement depth's data. Index 0 is the coarsest level.
//
// The exported fields are read-only for callers: A, ActiveDofs and Band must
// be replaced only through Hierarchy.RebuildLevel or SetBand, which also drop
// the cached direct-solve factorizations. Assigning them directly leaves
// stale factorizations behind.
type Level struct {
	Index int

	// A is the level's assembled system matrix over its active DOFs.
	// Nil between AppendLevel and the first RebuildLevel.
	A *sparse.CSR

	// ActiveDofs are the global DOF ids backing the level-local indices;
	// the level-local index of ActiveDofs[k] is k.
	ActiveDofs []int

	// Band restricts level-local vectors to the interface band. Nil or
	// empty when the level does not resolve the interface.
	Band *band.Restriction

	// P prolongs this level's vectors to the next-finer level
	// (rows = finer active count, cols = this level's active count).
	// Nil on the current finest level.
	P *sparse.CSR

	// GeomVersion records which geometry snapshot produced A and the
	// active sets.
	GeomVersion int

	bandLU *mat.LU // cached factorization of R·A·Rᵗ
	fullLU *mat.LU // cached factorization of A, coarsest level only
}

// N returns the level's active-DOF count.
func (lv *Level) N() int { return len(lv.ActiveDofs) }

// SetBand installs the interface-band restriction, invalidating any cached
// band factorization.
func (lv *Level) SetBand(r *band.Restriction) error {
	if r != nil && r.FullLen() != lv.N() {
		return fmt.Errorf("level %d: band restriction over %d DOFs, level has %d: %w",
			lv.Index, r.FullLen(), lv.N(), ErrInconsistentDimension)
	}
	lv.Band = r
	lv.bandLU = nil
	return nil
}

// BandSolve solves the reduced band system (R·A·Rᵗ)·δ = rb exactly. The dense
// factorization is computed on first use and cached until the level's matrix
// or band changes. The band system's size is bounded by the interface-cell
// count, not the global mesh size, so a dense LU is adequate.
func (lv *Level) BandSolve(rb []float64) ([]float64, error) {
	nb := 0
	if lv.Band != nil {
		nb = lv.Band.Len()
	}
	if len(rb) != nb {
		return nil, fmt.Errorf("level %d: band rhs has %d entries, band has %d: %w",
			lv.Index, len(rb), nb, ErrInconsistentDimension)
	}
	if nb == 0 {
		return nil, nil
	}
	if lv.bandLU == nil {
		sub := utils.GatherDense(lv.A, lv.Band.Dofs())
		lu := &mat.LU{}
		lu.Factorize(sub)
		lv.bandLU = lu
	}
	delta := make([]float64, nb)
	dst := mat.NewVecDense(nb, delta)
	if err := lv.bandLU.SolveVecTo(dst, false, mat.NewVecDense(nb, rb)); err != nil {
		lv.bandLU = nil
		return nil, fmt.Errorf("level %d: %v: %w", lv.Index, err, ErrSingularBandSystem)
	}
	return delta, nil
}

// SolveDirect solves A·x = rhs exactly via a cached dense LU. Only the
// coarsest level is solved this way; it is the V-cycle recursion's base case.
func (lv *Level) SolveDirect(rhs, x []float64) error {
	n := lv.N()
	if len(rhs) != n || len(x) != n {
		return fmt.Errorf("level %d: direct solve with %d/%d entries, level has %d: %w",
			lv.Index, len(rhs), len(x), n, ErrInconsistentDimension)
	}
	if n == 0 {
		return nil
	}
	if lv.fullLU == nil {
		lu := &mat.LU{}
		lu.Factorize(lv.A.ToDense())
		lv.fullLU = lu
	}
	dst := mat.NewVecDense(n, x)
	if err := lv.fullLU.SolveVecTo(dst, false, mat.NewVecDense(n, append([]float64(nil), rhs...))); err != nil {
		lv.fullLU = nil
		return fmt.Errorf("level %d: coarse direct solve: %v: %w", lv.Index, err, ErrSingularCoarseSystem)
	}
	return nil
}

// Hierarchy is the ordered sequence of levels, coarsest first. It is owned by
// exactly one solver instance and is not safe for concurrent mutation.
type Hierarchy struct {
	levels []*Level
}

// New creates the hierarchy with level 0 from the coarsest assembled system.
func New(coarseA *sparse.CSR, coarseActive []int) (*Hierarchy, error) {
	if coarseA == nil {
		return nil, fmt.Errorf("hierarchy: nil coarse matrix: %w", ErrInconsistentDimension)
	}
	r, c := coarseA.Dims()
	if r != c || r != len(coarseActive) {
		return nil, fmt.Errorf("hierarchy: coarse matrix is %dx%d for %d active DOFs: %w",
			r, c, len(coarseActive), ErrInconsistentDimension)
	}
	lv := &Level{
		Index:      0,
		A:          coarseA,
		ActiveDofs: append([]int(nil), coarseActive...),
	}
	return &Hierarchy{levels: []*Level{lv}}, nil
}

// Depth returns the number of levels (refinement count + 1).
func (h *Hierarchy) Depth() int { return len(h.levels) }

// At returns level i, 0 = coarsest.
func (h *Hierarchy) At(i int) *Level { return h.levels[i] }

// Finest returns the current finest level.
func (h *Hierarchy) Finest() *Level { return h.levels[len(h.levels)-1] }

// AppendLevel adds one finer level with the given active DOFs, linking it to
// the previous finest level through the prolongation p (rows = new level's
// active count, cols = previous finest level's). The new level's matrix and
// band are installed afterwards via RebuildLevel.
func (h *Hierarchy) AppendLevel(p *sparse.CSR, newActive []int) (*Level, error) {
	if p == nil {
		return nil, fmt.Errorf("hierarchy: nil prolongation: %w", ErrInconsistentDimension)
	}
	prev := h.Finest()
	r, c := p.Dims()
	if c != prev.N() {
		return nil, fmt.Errorf("hierarchy: prolongation domain %d, level %d has %d active DOFs: %w",
			c, prev.Index, prev.N(), ErrInconsistentDimension)
	}
	if r != len(newActive) {
		return nil, fmt.Errorf("hierarchy: prolongation range %d, new level has %d active DOFs: %w",
			r, len(newActive), ErrInconsistentDimension)
	}
	prev.P = p
	lv := &Level{
		Index:      prev.Index + 1,
		ActiveDofs: append([]int(nil), newActive...),
	}
	h.levels = append(h.levels, lv)
	return lv, nil
}

// RebuildLevel replaces level i's matrix, active set, and band in place,
// recording the geometry version that produced them. Used both to finish a
// freshly appended level and to refresh a level after the interface moved.
// Cached factorizations are dropped. The active count must stay consistent
// with the prolongations already linking the level to its neighbors.
func (h *Hierarchy) RebuildLevel(i int, a *sparse.CSR, active, bandDofs []int, geomVersion int) error {
	if i < 0 || i >= len(h.levels) {
		return fmt.Errorf("hierarchy: no level %d in depth-%d hierarchy: %w", i, len(h.levels), ErrInconsistentDimension)
	}
	if a == nil {
		return fmt.Errorf("hierarchy: nil matrix for level %d: %w", i, ErrInconsistentDimension)
	}
	lv := h.levels[i]
	r, c := a.Dims()
	if r != c || r != len(active) {
		return fmt.Errorf("hierarchy: level %d matrix is %dx%d for %d active DOFs: %w",
			i, r, c, len(active), ErrInconsistentDimension)
	}
	if lv.P != nil {
		if _, pc := lv.P.Dims(); pc != len(active) {
			return fmt.Errorf("hierarchy: level %d prolongation domain %d, rebuild has %d active DOFs: %w",
				i, pc, len(active), ErrInconsistentDimension)
		}
	}
	if i > 0 {
		if pr, _ := h.levels[i-1].P.Dims(); pr != len(active) {
			return fmt.Errorf("hierarchy: level %d prolongation range %d, rebuild has %d active DOFs: %w",
				i-1, pr, len(active), ErrInconsistentDimension)
		}
	}
	restr, err := band.NewRestriction(len(active), bandDofs)
	if err != nil {
		return err
	}
	lv.A = a
	lv.ActiveDofs = append(lv.ActiveDofs[:0], active...)
	lv.Band = restr
	lv.GeomVersion = geomVersion
	lv.bandLU = nil
	lv.fullLU = nil
	return nil
}
