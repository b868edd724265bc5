package analyser

import "errors"

// ErrDidNotConverge is returned if the fixed-point loop exceeds its
// round budget without stabilizing. The descriptor lattice has finite
// height (a shape's rank and each dimension, the type, and the value
// can each only go from unknown to known once), so this indicates a
// bug in an operator's inference rather than a genuinely unbounded
// graph.
var ErrDidNotConverge = errors.New("analyser: did not converge")
