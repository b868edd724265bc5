package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// ExpandDims inserts size-1 axes at the positions named by its second
// input, grounded on original_source/src/ops/array/mod.rs's ExpandDims
// op. Negative axis positions are rejected, matching the original's
// "unimplemented ExpandDims with negative parameter".
type ExpandDims struct{}

func buildExpandDims(map[string]interface{}) (op.Op, error) {
	return &ExpandDims{}, nil
}

// OpType returns "ExpandDims".
func (ExpandDims) OpType() string { return "ExpandDims" }

// Eval inserts each requested axis in turn, in the order given.
func (ExpandDims) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 2, "ExpandDims"); err != nil {
		return nil, err
	}

	data, dimsT := inputs[0], inputs[1]

	dims, err := dimsT.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpandDims dims must be i32", op.ErrTypeMismatch)
	}

	shape := append([]int(nil), data.Shape()...)

	for _, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("%w: ExpandDims with negative axis is unsupported", op.ErrUnsupportedAttribute)
		}

		shape, err = insertAt(shape, int(d), 1)
		if err != nil {
			return nil, err
		}
	}

	out, err := data.Reshape(shape)
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{out}, nil
}

// InferForward evaluates eagerly when both inputs are concrete;
// otherwise it builds an open shape with a known 1 at each requested
// axis and unknown dimensions elsewhere, mirroring
// ExpandDims::infer_forward.
func (ExpandDims) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 2, "ExpandDims"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(ExpandDims{}, inputs); ok {
		return out, err
	}

	dimsT, err := inputs[1].Value.Concretize()
	if err != nil {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	raw, err := dimsT.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpandDims dims must be i32", op.ErrTypeMismatch)
	}

	dims := make([]int, len(raw))
	for i, d := range raw {
		if d < 0 {
			return nil, fmt.Errorf("%w: ExpandDims with negative axis is unsupported", op.ErrUnsupportedAttribute)
		}

		dims[i] = int(d)
	}

	dims = sortedAscendingInts(dims)

	var outDims []abstract.Dim

	previous := 0

	for _, d := range dims {
		for k := previous; k < d; k++ {
			outDims = append(outDims, abstract.AnyDim())
		}

		outDims = append(outDims, abstract.KnownDim(1))
		previous = d + 1
	}

	return []abstract.Descriptor{{
		Type:  inputs[0].Type,
		Shape: abstract.OpenShape(outDims...),
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward reports an unconstrained data input only, mirroring
// ExpandDims::infer_backward.
func (ExpandDims) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "ExpandDims"); err != nil {
		return nil, err
	}

	return []abstract.Descriptor{
		{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()},
	}, nil
}
