package ops

import (
	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Const is a leaf node that carries a fixed tensor baked into the graph
// at load time. The original source has no standalone Const op because
// every constant arrives pre-folded into an attribute of its consumer;
// this engine keeps constants as their own node so the analyser and the
// evaluator see them like any other producer (spec §4.2).
type Const struct {
	value *tensor.Tensor
}

func buildConst(attrs map[string]interface{}) (op.Op, error) {
	v, err := tensorAttr(attrs, "value")
	if err != nil {
		return nil, err
	}

	return &Const{value: v}, nil
}

// OpType returns "Const".
func (c *Const) OpType() string { return "Const" }

// Eval ignores its (absent) inputs and returns the baked-in tensor.
func (c *Const) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 0, "Const"); err != nil {
		return nil, err
	}

	return []*tensor.Tensor{c.value}, nil
}

// InferForward reports the fully concrete descriptor of the baked-in
// value.
func (c *Const) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 0, "Const"); err != nil {
		return nil, err
	}

	return []abstract.Descriptor{abstract.FromTensor(c.value)}, nil
}

// InferBackward has nothing to report: a Const has no inputs.
func (c *Const) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Const"); err != nil {
		return nil, err
	}

	return nil, nil
}
