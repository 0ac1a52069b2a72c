package hierarchy

import "errors"

var (
	// ErrInconsistentDimension is returned when an operand's shape disagrees
	// with the level it targets: a matrix whose dimension differs from the
	// active-DOF count, or a prolongation whose domain/range does not match
	// the adjacent levels. It indicates a broken hierarchy-construction
	// invariant and is fatal to the current solve attempt.
	ErrInconsistentDimension = errors.New("hierarchy: operand dimension inconsistent with level")

	// ErrSingularBandSystem is returned when the interface-band direct solve
	// fails to factorize, which can happen with degenerate or zero-width
	// bands. Callers may fall back to skipping the band correction for that
	// sweep; see smoother.Config.
	ErrSingularBandSystem = errors.New("hierarchy: interface-band system is singular")

	// ErrSingularCoarseSystem is returned when the coarsest level's direct
	// solve fails to factorize. Unlike a degenerate band this has no
	// fallback: the coarse operator is broken and the solve attempt is
	// fatal until the hierarchy is rebuilt.
	ErrSingularCoarseSystem = errors.New("hierarchy: coarsest-level system is singular")
)
