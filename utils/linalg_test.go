package utils

import (
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
)

func buildCSR(r, c int, entries map[[2]int]float64) *sparse.CSR {
	dok := sparse.NewDOK(r, c)
	for ij, v := range entries {
		dok.Set(ij[0], ij[1], v)
	}
	return dok.ToCSR()
}

func TestMulCSRVec(t *testing.T) {
	// [2 1 0; 0 3 0; 1 0 4]
	a := buildCSR(3, 3, map[[2]int]float64{
		{0, 0}: 2, {0, 1}: 1, {1, 1}: 3, {2, 0}: 1, {2, 2}: 4,
	})
	x := []float64{1, 2, 3}
	dst := make([]float64, 3)
	MulCSRVec(a, x, dst)
	assert.InDeltaSlicef(t, []float64{4, 6, 13}, dst, 1.e-14, "")
}

func TestMulCSRTransVec(t *testing.T) {
	// Rectangular 3x2 prolongation-like operator.
	p := buildCSR(3, 2, map[[2]int]float64{
		{0, 0}: 1, {1, 0}: 0.5, {1, 1}: 0.5, {2, 1}: 1,
	})
	r := []float64{2, 4, 6}
	dst := make([]float64, 2)
	MulCSRTransVec(p, r, dst)
	assert.InDeltaSlicef(t, []float64{4, 8}, dst, 1.e-14, "")
}

func TestResidual(t *testing.T) {
	a := buildCSR(2, 2, map[[2]int]float64{{0, 0}: 2, {1, 1}: 2})
	x := []float64{1, 1}
	rhs := []float64{3, 1}
	dst := make([]float64, 2)
	Residual(a, x, rhs, dst)
	assert.InDeltaSlicef(t, []float64{1, -1}, dst, 1.e-14, "")
}

func TestGatherDense(t *testing.T) {
	a := buildCSR(4, 4, map[[2]int]float64{
		{0, 0}: 1, {1, 1}: 2, {1, 2}: -1, {2, 1}: -1, {2, 2}: 3, {3, 3}: 4,
	})
	sub := GatherDense(a, []int{1, 2})
	assert.InDelta(t, 2, sub.At(0, 0), 1.e-14)
	assert.InDelta(t, -1, sub.At(0, 1), 1.e-14)
	assert.InDelta(t, -1, sub.At(1, 0), 1.e-14)
	assert.InDelta(t, 3, sub.At(1, 1), 1.e-14)
}

func TestGatherDenseEmpty(t *testing.T) {
	a := buildCSR(2, 2, map[[2]int]float64{{0, 0}: 1, {1, 1}: 1})
	sub := GatherDense(a, nil)
	r, c := sub.Dims()
	assert.Equal(t, 0, r)
	assert.Equal(t, 0, c)
}

func TestMulCSRVecShapeMismatchPanics(t *testing.T) {
	a := buildCSR(2, 2, map[[2]int]float64{{0, 0}: 1})
	assert.Panics(t, func() {
		MulCSRVec(a, make([]float64, 3), make([]float64, 2))
	})
}
