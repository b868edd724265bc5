package registry

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Eval always fails: an Unimplemented op stands in for an operator name
// the registry does not recognize, and graphs often carry operators the
// engine cannot execute whose presence does not block the required
// subgraph (spec §4.3).
func (u *Unimplemented) Eval(_ []*tensor.Tensor) ([]*tensor.Tensor, error) {
	return nil, fmt.Errorf("%w: %s", op.ErrUnimplementedOperator, u.name)
}

// InferForward always fails; there is nothing to infer about an
// operator whose semantics are unknown.
func (u *Unimplemented) InferForward(_ []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return nil, fmt.Errorf("%w: %s", op.ErrUnimplementedOperator, u.name)
}

// InferBackward always fails, symmetrically with InferForward.
func (u *Unimplemented) InferBackward(_ []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return nil, fmt.Errorf("%w: %s", op.ErrUnimplementedOperator, u.name)
}

var _ op.Op = (*Unimplemented)(nil)
