// Package band identifies the interface band of an unfitted discretization:
// the subset of a level's active degrees of freedom whose basis support
// touches interface-cut cells, optionally widened by topological layers to
// match ghost-penalty stencils. The band drives the reduced direct correction
// inside the multigrid smoother.
package band

import (
	"fmt"
	"sort"
)

// CellClass labels a mesh cell relative to the level-set interface.
type CellClass uint8

const (
	Inside  CellClass = iota // cell entirely on the inside phase
	Outside                  // cell entirely on the outside phase
	Cut                      // cell intersected by the interface
)

func (c CellClass) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Cut:
		return "cut"
	}
	return fmt.Sprintf("CellClass(%d)", uint8(c))
}

// Classification is the per-level view delivered by the external cut-cell
// classifier; classification itself is a collaborator service, not
// implemented here.
type Classification struct {
	// Cells holds one label per mesh cell covered by the level's FE space.
	Cells []CellClass

	// Support maps each active DOF (level-local index) to the cells its
	// basis function touches.
	Support [][]int

	// Neighbors is the cell adjacency, indexed like Cells. Only required
	// when the selector widens the band by one or more layers.
	Neighbors [][]int
}

// Selector computes interface bands from cut-cell classifications.
type Selector struct {
	// Layers widens the cut-cell set by this many topological layers of
	// neighboring cells before collecting DOFs. Zero means cut cells only;
	// ghost-penalty stabilized formulations typically want 1.
	Layers int
}

// SelectBand returns the sorted level-local indices of the active DOFs whose
// support touches at least one cut cell (after widening). The result is a
// deterministic function of the classification; an empty band is a valid
// outcome when the mesh does not yet resolve the interface.
func (s *Selector) SelectBand(nActive int, cl Classification) ([]int, error) {
	if len(cl.Support) != nActive {
		return nil, fmt.Errorf("selector: support covers %d DOFs, level has %d active: %w",
			len(cl.Support), nActive, ErrInvalidBandSelection)
	}
	nc := len(cl.Cells)

	// Mark cut cells, then widen layer by layer through the adjacency.
	marked := make([]bool, nc)
	var front []int
	for c, class := range cl.Cells {
		if class == Cut {
			marked[c] = true
			front = append(front, c)
		}
	}
	for layer := 0; layer < s.Layers && len(front) > 0; layer++ {
		if cl.Neighbors == nil {
			return nil, fmt.Errorf("selector: widening by %d layers requires cell adjacency: %w",
				s.Layers, ErrInvalidBandSelection)
		}
		var next []int
		for _, c := range front {
			if c >= len(cl.Neighbors) {
				return nil, fmt.Errorf("selector: adjacency missing cell %d: %w", c, ErrInvalidBandSelection)
			}
			for _, nb := range cl.Neighbors[c] {
				if nb < 0 || nb >= nc {
					return nil, fmt.Errorf("selector: neighbor cell %d out of range [0,%d): %w",
						nb, nc, ErrInvalidBandSelection)
				}
				if !marked[nb] {
					marked[nb] = true
					next = append(next, nb)
				}
			}
		}
		front = next
	}

	// A DOF joins the band when any supporting cell is marked.
	inBand := make([]bool, nActive)
	for dof, cells := range cl.Support {
		for _, c := range cells {
			if c < 0 || c >= nc {
				return nil, fmt.Errorf("selector: DOF %d supported on cell %d outside classification [0,%d): %w",
					dof, c, nc, ErrInvalidBandSelection)
			}
			if marked[c] {
				inBand[dof] = true
				break
			}
		}
	}

	var dofs []int
	for dof, in := range inBand {
		if in {
			dofs = append(dofs, dof)
		}
	}
	sort.Ints(dofs)
	return dofs, nil
}
