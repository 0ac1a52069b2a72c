// Package multigrid implements a geometric multigrid V-cycle over an
// interface-aware level hierarchy. Every level is smoothed with the two-stage
// subdomain/interface-band smoother; the coarsest level is solved exactly.
// The solver is usable standalone as a stationary Richardson-type iteration
// or as a preconditioner inside an external Krylov method.
package multigrid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/schruste/xfem-lite/hierarchy"
	"github.com/schruste/xfem-lite/smoother"
	"github.com/schruste/xfem-lite/utils"
)

// Config holds the caller-supplied cycle parameters.
type Config struct {
	// PreSmooth and PostSmooth are the smoothing sweep counts nu applied
	// before restriction and after prolongation on every non-coarsest level.
	PreSmooth  int
	PostSmooth int

	// Smoother configures the per-level sweeps.
	Smoother smoother.Config
}

// DefaultConfig returns the standard V(1,1) cycle.
func DefaultConfig() Config {
	return Config{PreSmooth: 1, PostSmooth: 1}
}

// Result reports the outcome of a standalone iteration. Hitting the iteration
// cap is not an error: X always carries the best current iterate, and callers
// routinely feed partially converged iterates onward.
type Result struct {
	X            []float64
	Iterations   int
	Converged    bool
	ResidualNorm float64 // relative to ||rhs||₂
}

// Solver runs V-cycles over a hierarchy. A solver exclusively owns its
// hierarchy for the duration of a solve; it is not safe for concurrent use.
type Solver struct {
	h   *hierarchy.Hierarchy
	sm  *smoother.Smoother
	cfg Config
}

// NewSolver validates that the hierarchy is complete (every level carries an
// assembled matrix) and returns a solver over it.
func NewSolver(h *hierarchy.Hierarchy, cfg Config) (*Solver, error) {
	if h == nil || h.Depth() == 0 {
		return nil, fmt.Errorf("multigrid: empty hierarchy: %w", hierarchy.ErrInconsistentDimension)
	}
	for i := 0; i < h.Depth(); i++ {
		if h.At(i).A == nil {
			return nil, fmt.Errorf("multigrid: level %d has no assembled matrix: %w",
				i, hierarchy.ErrInconsistentDimension)
		}
	}
	if cfg.PreSmooth < 0 || cfg.PostSmooth < 0 {
		return nil, fmt.Errorf("multigrid: negative smoothing count nu=(%d,%d)", cfg.PreSmooth, cfg.PostSmooth)
	}
	return &Solver{h: h, sm: smoother.New(cfg.Smoother), cfg: cfg}, nil
}

// Apply runs exactly one V-cycle from a zero initial guess and returns the
// correction, i.e. x = M⁻¹·rhs for the V-cycle preconditioner M. No
// convergence check is performed.
func (s *Solver) Apply(rhs []float64) ([]float64, error) {
	fine := s.h.Finest()
	if len(rhs) != fine.N() {
		return nil, fmt.Errorf("multigrid: rhs has %d entries, finest level has %d: %w",
			len(rhs), fine.N(), hierarchy.ErrInconsistentDimension)
	}
	x := make([]float64, fine.N())
	if err := s.vcycle(s.h.Depth()-1, rhs, x); err != nil {
		return nil, err
	}
	return x, nil
}

// PSolve is the preconditioner adapter for an external Krylov host: it writes
// M⁻¹·rhs into dst. The signature matches the preconditioner callback shape
// of iterative-solver packages operating on raw float64 slices.
func (s *Solver) PSolve(dst, rhs []float64) error {
	x, err := s.Apply(rhs)
	if err != nil {
		return err
	}
	copy(dst, x)
	return nil
}

// Iterate runs standalone V-cycles from x0 (nil means zero) until the
// relative residual ||rhs − A·x||₂/||rhs||₂ drops below tol or maxIter cycles
// have been spent. Non-convergence is reported through Result.Converged, not
// as an error.
func (s *Solver) Iterate(rhs, x0 []float64, tol float64, maxIter int) (Result, error) {
	fine := s.h.Finest()
	n := fine.N()
	if len(rhs) != n || (x0 != nil && len(x0) != n) {
		return Result{}, fmt.Errorf("multigrid: iterate with len(rhs)=%d len(x0)=%d on %d active DOFs: %w",
			len(rhs), len(x0), n, hierarchy.ErrInconsistentDimension)
	}
	x := make([]float64, n)
	copy(x, x0)

	rhsNorm := floats.Norm(rhs, 2)
	if rhsNorm == 0 {
		// Consistent zero system: the zero vector is the exact solution.
		return Result{X: x, Converged: true}, nil
	}

	r := make([]float64, n)
	rel := func() float64 {
		utils.Residual(fine.A, x, rhs, r)
		return floats.Norm(r, 2) / rhsNorm
	}

	res := Result{X: x, ResidualNorm: rel()}
	for res.Iterations = 0; res.Iterations < maxIter; {
		if res.ResidualNorm < tol {
			res.Converged = true
			return res, nil
		}
		if err := s.vcycle(s.h.Depth()-1, rhs, x); err != nil {
			return res, err
		}
		res.Iterations++
		res.ResidualNorm = rel()
	}
	res.Converged = res.ResidualNorm < tol
	return res, nil
}

// vcycle recurses from level l down to the exact coarse solve and back,
// updating x in place.
func (s *Solver) vcycle(l int, rhs, x []float64) error {
	lv := s.h.At(l)
	if l == 0 {
		return lv.SolveDirect(rhs, x)
	}

	for k := 0; k < s.cfg.PreSmooth; k++ {
		if err := s.sm.Smooth(lv, rhs, x); err != nil {
			return err
		}
	}

	// Restrict the residual through the coarse level's prolongation.
	coarse := s.h.At(l - 1)
	r := make([]float64, lv.N())
	utils.Residual(lv.A, x, rhs, r)
	rc := make([]float64, coarse.N())
	utils.MulCSRTransVec(coarse.P, r, rc)

	xc := make([]float64, coarse.N())
	if err := s.vcycle(l-1, rc, xc); err != nil {
		return err
	}

	// Prolong the coarse correction and add it in.
	corr := make([]float64, lv.N())
	utils.MulCSRVec(coarse.P, xc, corr)
	floats.Add(x, corr)

	for k := 0; k < s.cfg.PostSmooth; k++ {
		if err := s.sm.Smooth(lv, rhs, x); err != nil {
			return err
		}
	}
	return nil
}
