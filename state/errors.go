package state

import "errors"

// ErrPrecondMissing is returned by ComputeOne when a node's inputs have
// not all been computed yet (spec §7).
var ErrPrecondMissing = errors.New("state: precondition missing")
