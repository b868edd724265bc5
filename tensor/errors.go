package tensor

import "errors"

// ErrTypeMismatch is returned when an operation is given a tensor whose
// element type does not match what was required.
var ErrTypeMismatch = errors.New("tensor: type mismatch")

// ErrShapeMismatch is returned when a shape is internally inconsistent
// or incompatible with the requested operation.
var ErrShapeMismatch = errors.New("tensor: shape mismatch")
