package ops

import (
	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Cast converts its single input to a configured element type.
// Supplemented directly from spec.md §4.2; not present among the
// original_source files retrieved here.
type Cast struct {
	to dtype.Type
}

func buildCast(attrs map[string]interface{}) (op.Op, error) {
	dt, err := dtypeAttr(attrs, "DstT")
	if err != nil {
		return nil, err
	}

	return &Cast{to: dt}, nil
}

// OpType returns "Cast".
func (c *Cast) OpType() string { return "Cast" }

// Eval casts its input to the configured target type.
func (c *Cast) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 1, "Cast"); err != nil {
		return nil, err
	}

	out, err := inputs[0].Cast(c.to)
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{out}, nil
}

// InferForward reports the target type and passes the input's shape
// through unchanged; it evaluates eagerly when the input is concrete.
func (c *Cast) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 1, "Cast"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(c, inputs); ok {
		return out, err
	}

	return []abstract.Descriptor{{
		Type:  abstract.ExactType(c.to),
		Shape: inputs[0].Shape,
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward reports an unconstrained input of unknown type.
func (c *Cast) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Cast"); err != nil {
		return nil, err
	}

	return []abstract.Descriptor{
		{Type: abstract.AnyType(), Shape: outputs[0].Shape, Value: abstract.AnyValue()},
	}, nil
}
