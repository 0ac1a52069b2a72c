// Package smoother implements the two-stage relaxation used by the
// interface-aware multigrid method: a symmetric Gauss–Seidel sweep over a
// level's full active system, followed by an exact direct correction on the
// interface-band subspace. The band correction is what keeps the sweep's
// convergence robust under coefficient jumps across the interface; the
// subdomain DOFs it leaves behind are only weakly coupled across the cut.
package smoother

import (
	"errors"
	"fmt"

	"github.com/schruste/xfem-lite/hierarchy"
	"github.com/schruste/xfem-lite/utils"
)

// ErrZeroDiagonal is returned when a Gauss–Seidel sweep meets a zero diagonal
// entry, which a compressed active-DOF system must never contain.
var ErrZeroDiagonal = errors.New("smoother: zero diagonal entry in active system")

// Config controls smoother behavior.
type Config struct {
	// SkipSingularBand makes a failed band factorization degrade the sweep
	// to subdomain relaxation only, instead of propagating
	// hierarchy.ErrSingularBandSystem.
	SkipSingularBand bool
}

// Smoother applies smoothing sweeps to hierarchy levels. It is stateless
// across calls and may be shared between levels of one solver instance.
type Smoother struct {
	cfg Config
}

// New returns a smoother with the given configuration.
func New(cfg Config) *Smoother {
	return &Smoother{cfg: cfg}
}

// Smooth performs one two-stage sweep on lv, updating x in place:
//
//  1. one symmetric Gauss–Seidel sweep (forward then backward) over the full
//     active system;
//  2. the interface correction x += Rᵗ·(R·A·Rᵗ)⁻¹·R·(rhs − A·x), an exact
//     solve on the band subspace.
//
// After the call the residual's restriction to the interface band is zero up
// to the band solve's floating-point accuracy. An empty band makes stage 2 a
// no-op.
func (s *Smoother) Smooth(lv *hierarchy.Level, rhs, x []float64) error {
	n := lv.N()
	if len(rhs) != n || len(x) != n {
		return fmt.Errorf("smoother: level %d has %d active DOFs, got len(rhs)=%d len(x)=%d: %w",
			lv.Index, n, len(rhs), len(x), hierarchy.ErrInconsistentDimension)
	}
	if err := s.relax(lv, rhs, x); err != nil {
		return err
	}
	return s.bandCorrect(lv, rhs, x)
}

// relax runs one symmetric Gauss–Seidel sweep. Each update uses the latest
// values of the other DOFs in the fixed forward-then-backward ordering; the
// symmetric sweep makes the smoother usable inside symmetric preconditioners.
func (s *Smoother) relax(lv *hierarchy.Level, rhs, x []float64) error {
	n := lv.N()
	for i := 0; i < n; i++ {
		if err := s.update(lv, rhs, x, i); err != nil {
			return err
		}
	}
	for i := n - 1; i >= 0; i-- {
		if err := s.update(lv, rhs, x, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Smoother) update(lv *hierarchy.Level, rhs, x []float64, i int) error {
	var diag, sum float64
	sum = rhs[i]
	lv.A.DoRowNonZero(i, func(_, j int, v float64) {
		if j == i {
			diag = v
		} else {
			sum -= v * x[j]
		}
	})
	if diag == 0 {
		return fmt.Errorf("level %d, DOF %d: %w", lv.Index, i, ErrZeroDiagonal)
	}
	x[i] = sum / diag
	return nil
}

func (s *Smoother) bandCorrect(lv *hierarchy.Level, rhs, x []float64) error {
	if lv.Band == nil || lv.Band.Len() == 0 {
		return nil
	}
	r := make([]float64, lv.N())
	utils.Residual(lv.A, x, rhs, r)
	rb := make([]float64, lv.Band.Len())
	lv.Band.Restrict(r, rb)
	delta, err := lv.BandSolve(rb)
	if err != nil {
		if s.cfg.SkipSingularBand && errors.Is(err, hierarchy.ErrSingularBandSystem) {
			return nil
		}
		return err
	}
	lv.Band.AddScaled(x, 1, delta)
	return nil
}
