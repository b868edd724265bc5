package ops

import (
	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Identity passes its single input through unchanged, grounded on
// original_source/src/ops/array/mod.rs's Identity op.
type Identity struct{}

func buildIdentity(map[string]interface{}) (op.Op, error) {
	return &Identity{}, nil
}

// OpType returns "Identity".
func (Identity) OpType() string { return "Identity" }

// Eval returns its input unchanged.
func (Identity) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 1, "Identity"); err != nil {
		return nil, err
	}

	return inputs, nil
}

// InferForward passes the input descriptor through unchanged.
func (Identity) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 1, "Identity"); err != nil {
		return nil, err
	}

	return inputs, nil
}

// InferBackward passes the output descriptor through unchanged.
func (Identity) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Identity"); err != nil {
		return nil, err
	}

	return outputs, nil
}
