package op

import "errors"

// ErrTypeMismatch is returned by Eval when an input's element type is
// not supported by the operator.
var ErrTypeMismatch = errors.New("op: type mismatch")

// ErrShapeMismatch is returned by Eval when input shapes are
// inconsistent with each other or with the operator's contract.
var ErrShapeMismatch = errors.New("op: shape mismatch")

// ErrUnsupportedAttribute is returned for attribute values outside the
// documented subset (e.g. negative axes on Squeeze).
var ErrUnsupportedAttribute = errors.New("op: unsupported attribute")

// ErrUnimplementedOperator is returned by Eval on a node whose operator
// was registered as a stub because its name was unknown at load time.
var ErrUnimplementedOperator = errors.New("op: unimplemented operator")

// ErrWrongArity is returned when an operator receives a number of
// inputs or outputs it does not support.
var ErrWrongArity = errors.New("op: wrong arity")

// ErrInferenceConflict is returned by the analyser when two descriptors
// meet to a contradiction.
var ErrInferenceConflict = errors.New("op: inference conflict")
