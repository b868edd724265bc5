package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Reshape reinterprets its first input under a new shape taken from its
// second input, which may contain one -1 placeholder resolved against
// the element count, grounded on original_source/src/ops/array/mod.rs's
// Reshape op.
type Reshape struct{}

func buildReshape(map[string]interface{}) (op.Op, error) {
	return &Reshape{}, nil
}

// OpType returns "Reshape".
func (Reshape) OpType() string { return "Reshape" }

// Eval reshapes inputs[0] according to inputs[1].
func (Reshape) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 2, "Reshape"); err != nil {
		return nil, err
	}

	data, dimsT := inputs[0], inputs[1]

	dims, err := dimsT.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: Reshape dims must be i32", op.ErrTypeMismatch)
	}

	shape, err := trueDims(dims, data.Size())
	if err != nil {
		return nil, err
	}

	out, err := data.Reshape(shape)
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{out}, nil
}

// InferForward evaluates eagerly when both inputs are concrete;
// otherwise it resolves the output shape from the input's shape (or,
// failing that, from a dims value free of -1 placeholders), grounded on
// Reshape::infer_forward. Unlike the original, which resolves a -1
// placeholder against only the input's leading dimension, this
// generalizes to the full element count, since arbitrary-rank reshapes
// are in scope here.
func (Reshape) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 2, "Reshape"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(Reshape{}, inputs); ok {
		return out, err
	}

	dimsT, err := inputs[1].Value.Concretize()
	if err != nil {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	dims, err := dimsT.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: Reshape dims must be i32", op.ErrTypeMismatch)
	}

	if shape, err := inputs[0].Shape.Concretize(); err == nil {
		resolved, err := trueDims(dims, product(shape))
		if err != nil {
			return nil, err
		}

		return []abstract.Descriptor{{
			Type:  inputs[0].Type,
			Shape: abstract.FromConcrete(resolved),
			Value: abstract.AnyValue(),
		}}, nil
	}

	if !containsNeg(dims) {
		shape := make([]int, len(dims))
		for i, d := range dims {
			shape[i] = int(d)
		}

		return []abstract.Descriptor{{
			Type:  inputs[0].Type,
			Shape: abstract.FromConcrete(shape),
			Value: abstract.AnyValue(),
		}}, nil
	}

	return []abstract.Descriptor{{Type: inputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()}}, nil
}

// InferBackward reports an unconstrained data input and an i32 dims
// input, mirroring Reshape::infer_backward.
func (Reshape) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Reshape"); err != nil {
		return nil, err
	}

	return []abstract.Descriptor{
		{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()},
		{Type: abstract.ExactType(dtype.I32), Shape: abstract.AnyShape(), Value: abstract.AnyValue()},
	}, nil
}
