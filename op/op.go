// Package op defines the capability set every tensor operator must
// implement: evaluation and the forward/backward abstract-inference
// methods (spec §4.2). Grounded on original_source/src/ops/mod.rs's Op
// trait and teacher's graph.Node interface.
package op

import (
	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/tensor"
)

// Op is the polymorphic unit of computation. Implementations are
// stateless except for immutable attributes captured at build time.
type Op interface {
	// OpType returns the operator's registered name, e.g. "Reshape".
	OpType() string

	// Eval computes concrete outputs from concrete inputs.
	Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error)

	// InferForward computes output descriptors from input descriptors.
	// Implementations must be monotone: refining an input never weakens
	// the output.
	InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error)

	// InferBackward computes input descriptors from output descriptors.
	InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error)
}
