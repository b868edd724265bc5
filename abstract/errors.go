package abstract

import "errors"

// ErrNotConcrete is returned when a caller asks to concretize a
// descriptor component that is still partially or fully unknown.
var ErrNotConcrete = errors.New("abstract: value is not concrete")

// ErrConflict is returned by Meet when two descriptors carry
// incompatible concrete information (spec §4.6).
var ErrConflict = errors.New("abstract: conflicting information")
