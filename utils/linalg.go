package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// MulCSRVec computes dst = a*x for a CSR matrix.
// Panics on dimension mismatch, matching gonum/mat conventions for hot-path
// kernels; shape errors here indicate a broken hierarchy invariant upstream.
func MulCSRVec(a *sparse.CSR, x, dst []float64) {
	r, c := a.Dims()
	if len(x) != c || len(dst) != r {
		panic(fmt.Sprintf("utils: matvec shape mismatch: A is %dx%d, len(x)=%d, len(dst)=%d",
			r, c, len(x), len(dst)))
	}
	for i := 0; i < r; i++ {
		var sum float64
		a.DoRowNonZero(i, func(_, j int, v float64) {
			sum += v * x[j]
		})
		dst[i] = sum
	}
}

// MulCSRTransVec computes dst = aᵀ*x for a CSR matrix, without forming the
// transpose. Used for residual restriction (Pᵀ r) across hierarchy levels.
func MulCSRTransVec(a *sparse.CSR, x, dst []float64) {
	r, c := a.Dims()
	if len(x) != r || len(dst) != c {
		panic(fmt.Sprintf("utils: transpose matvec shape mismatch: A is %dx%d, len(x)=%d, len(dst)=%d",
			r, c, len(x), len(dst)))
	}
	for i := range dst {
		dst[i] = 0
	}
	a.DoNonZero(func(i, j int, v float64) {
		dst[j] += v * x[i]
	})
}

// Residual computes dst = rhs - a*x.
func Residual(a *sparse.CSR, x, rhs, dst []float64) {
	MulCSRVec(a, x, dst)
	for i, b := range rhs {
		dst[i] = b - dst[i]
	}
}

// GatherDense extracts the dense submatrix a[idx,idx]. The index list must be
// in-range for a; duplicates are permitted but callers dealing with DOF sets
// never produce them.
func GatherDense(a *sparse.CSR, idx []int) *mat.Dense {
	r, c := a.Dims()
	n := len(idx)
	if n == 0 {
		return &mat.Dense{}
	}
	// Inverse map: global row/col -> position in idx.
	pos := make(map[int]int, n)
	for k, g := range idx {
		if g < 0 || g >= r || g >= c {
			panic(fmt.Sprintf("utils: gather index %d out of range for %dx%d matrix", g, r, c))
		}
		pos[g] = k
	}
	sub := mat.NewDense(n, n, nil)
	for k, g := range idx {
		a.DoRowNonZero(g, func(_, j int, v float64) {
			if kj, ok := pos[j]; ok {
				sub.Set(k, kj, v)
			}
		})
	}
	return sub
}
