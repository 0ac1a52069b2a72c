package hierarchy

import "fmt"

// Geometry is a versioned snapshot of the level-set/mesh state. Collaborator
// calls receive the snapshot explicitly so a level can record which geometry
// version produced its matrix and active sets, instead of relying on implicit
// mutation ordering of a shared mesh object.
type Geometry struct {
	Version int
}

// Formulation tags the variational formulation a host system assembles with.
// The controller threads it through the assembly contract unchanged; the
// hierarchy itself is formulation-agnostic.
type Formulation uint8

const (
	// PenaltyFormulation enforces interface/tangential constraints via
	// Nitsche-type penalty terms.
	PenaltyFormulation Formulation = iota
	// MixedFormulation enforces them via a Lagrange multiplier field.
	MixedFormulation
)

func (f Formulation) String() string {
	switch f {
	case PenaltyFormulation:
		return "penalty"
	case MixedFormulation:
		return "mixed"
	}
	return fmt.Sprintf("Formulation(%d)", uint8(f))
}

// CoarsePolicy selects how the controller treats coarse-level operators when
// the geometry moves.
type CoarsePolicy uint8

const (
	// FreezeCoarse keeps coarse matrices fixed once built; only the finest
	// level is refreshed on a geometry change. Cheap, and accurate as long
	// as the coarse operators' own geometry did not change.
	FreezeCoarse CoarsePolicy = iota
	// RefreshStale re-assembles every level whose recorded geometry version
	// is older than the current snapshot.
	RefreshStale
)
