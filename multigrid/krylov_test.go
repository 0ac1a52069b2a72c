package multigrid

import (
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/schruste/xfem-lite/utils"
)

// pcg is a minimal preconditioned conjugate-gradient host standing in for an
// external Krylov package; it consumes the solver purely through the PSolve
// preconditioner callback.
func pcg(t *testing.T, a *sparse.CSR, rhs []float64, psolve func(dst, r []float64) error, tol float64, maxIter int) ([]float64, int) {
	t.Helper()
	n := len(rhs)
	x := make([]float64, n)
	r := append([]float64(nil), rhs...)
	z := make([]float64, n)
	require.NoError(t, psolve(z, r))
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)
	bnorm := floats.Norm(rhs, 2)

	for it := 1; it <= maxIter; it++ {
		utils.MulCSRVec(a, p, ap)
		alpha := rz / floats.Dot(p, ap)
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		if floats.Norm(r, 2)/bnorm < tol {
			return x, it
		}
		require.NoError(t, psolve(z, r))
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	t.Fatalf("pcg: no convergence in %d iterations", maxIter)
	return nil, 0
}

func TestPSolvePreconditionsCG(t *testing.T) {
	h := laplacianHierarchy(t, 4) // finest level has 31 DOFs
	s, err := NewSolver(h, DefaultConfig())
	require.NoError(t, err)

	fine := h.Finest()
	n := fine.N()
	rhs := make([]float64, n)
	for i := range rhs {
		rhs[i] = float64(i%4) - 1.5
	}

	// Identity "preconditioner" as the plain-CG baseline.
	ident := func(dst, r []float64) error {
		copy(dst, r)
		return nil
	}
	_, plainIters := pcg(t, fine.A, rhs, ident, 1e-8, 200)

	x, mgIters := pcg(t, fine.A, rhs, s.PSolve, 1e-8, 40)
	assert.Less(t, mgIters, plainIters)

	want := make([]float64, n)
	require.NoError(t, fine.SolveDirect(rhs, want))
	assert.InDeltaSlicef(t, want, x, 1e-6, "")
}

func TestPSolveIsOneCycleOfApply(t *testing.T) {
	h := laplacianHierarchy(t, 3)
	s, err := NewSolver(h, DefaultConfig())
	require.NoError(t, err)

	rhs := make([]float64, h.Finest().N())
	rhs[2] = 1
	rhs[9] = -3

	want, err := s.Apply(rhs)
	require.NoError(t, err)
	got := make([]float64, len(rhs))
	require.NoError(t, s.PSolve(got, rhs))
	assert.InDeltaSlicef(t, want, got, 0, "")
}
