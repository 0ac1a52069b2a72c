package band

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineClassification builds a 1D strip of nc cells with the given cut cells,
// where DOF i is supported on cells i-1 and i (nodal hat functions).
func lineClassification(nc int, cut ...int) Classification {
	cells := make([]CellClass, nc)
	for i := range cells {
		cells[i] = Inside
	}
	for _, c := range cut {
		cells[c] = Cut
	}
	support := make([][]int, nc+1)
	for i := 0; i <= nc; i++ {
		switch i {
		case 0:
			support[i] = []int{0}
		case nc:
			support[i] = []int{nc - 1}
		default:
			support[i] = []int{i - 1, i}
		}
	}
	neighbors := make([][]int, nc)
	for c := 0; c < nc; c++ {
		if c > 0 {
			neighbors[c] = append(neighbors[c], c-1)
		}
		if c < nc-1 {
			neighbors[c] = append(neighbors[c], c+1)
		}
	}
	return Classification{Cells: cells, Support: support, Neighbors: neighbors}
}

func TestSelectBandCutCellsOnly(t *testing.T) {
	sel := &Selector{}
	cl := lineClassification(6, 3)
	dofs, err := sel.SelectBand(7, cl)
	require.NoError(t, err)
	// Hat functions of DOFs 3 and 4 touch cell 3.
	assert.Equal(t, []int{3, 4}, dofs)
}

func TestSelectBandOneLayerWidening(t *testing.T) {
	sel := &Selector{Layers: 1}
	cl := lineClassification(6, 3)
	dofs, err := sel.SelectBand(7, cl)
	require.NoError(t, err)
	// Widening marks cells 2 and 4 as well, pulling in DOFs 2 and 5.
	assert.Equal(t, []int{2, 3, 4, 5}, dofs)
}

func TestSelectBandDeterministic(t *testing.T) {
	sel := &Selector{Layers: 1}
	cl := lineClassification(8, 2, 5)
	first, err := sel.SelectBand(9, cl)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := sel.SelectBand(9, cl)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSelectBandEmpty(t *testing.T) {
	sel := &Selector{Layers: 1}
	cl := lineClassification(4) // no cut cells
	dofs, err := sel.SelectBand(5, cl)
	require.NoError(t, err)
	assert.Empty(t, dofs)
}

func TestSelectBandSupportMismatch(t *testing.T) {
	sel := &Selector{}
	cl := lineClassification(4, 1)
	_, err := sel.SelectBand(3, cl) // level claims 3 active DOFs, support has 5
	assert.ErrorIs(t, err, ErrInvalidBandSelection)
}

func TestSelectBandSupportOutOfRange(t *testing.T) {
	sel := &Selector{}
	cl := lineClassification(4, 1)
	cl.Support[2] = []int{99}
	_, err := sel.SelectBand(5, cl)
	assert.ErrorIs(t, err, ErrInvalidBandSelection)
}

func TestSelectBandWideningNeedsAdjacency(t *testing.T) {
	sel := &Selector{Layers: 2}
	cl := lineClassification(4, 1)
	cl.Neighbors = nil
	_, err := sel.SelectBand(5, cl)
	assert.ErrorIs(t, err, ErrInvalidBandSelection)
}
