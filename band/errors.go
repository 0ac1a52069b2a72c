package band

import "errors"

// ErrInvalidBandSelection is returned when a cut-cell classification is
// inconsistent with the active DOF set it is paired with, e.g. a support map
// referencing cells the classification does not cover. Callers match it with
// errors.Is; call sites wrap it with fmt.Errorf("...: %w", ...) for context.
var ErrInvalidBandSelection = errors.New("band: classification inconsistent with active DOF set")
