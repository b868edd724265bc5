package ops

import (
	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// ShapeOp produces a rank-1 i32 tensor holding its input's shape,
// grounded on original_source/src/ops/array/mod.rs's Shape op. It is
// named ShapeOp to avoid colliding with abstract.Shape.
type ShapeOp struct{}

func buildShape(map[string]interface{}) (op.Op, error) {
	return &ShapeOp{}, nil
}

// OpType returns "Shape".
func (ShapeOp) OpType() string { return "Shape" }

// Eval returns the input's shape as a rank-1 i32 tensor.
func (ShapeOp) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 1, "Shape"); err != nil {
		return nil, err
	}

	dims := inputs[0].Shape()
	out := make([]int32, len(dims))

	for i, d := range dims {
		out[i] = int32(d)
	}

	t, err := tensor.New([]int{len(out)}, out)
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{t}, nil
}

// InferForward produces the input's concrete shape as the output's
// concrete value; the output's own shape is just its rank, mirroring
// Shape::infer_forward.
func (ShapeOp) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 1, "Shape"); err != nil {
		return nil, err
	}

	shape, err := inputs[0].Shape.Concretize()
	if err != nil {
		length := abstract.AnyDim()
		if !inputs[0].Shape.IsOpen() {
			length = abstract.KnownDim(inputs[0].Shape.Rank())
		}

		return []abstract.Descriptor{{
			Type:  abstract.ExactType(dtype.I32),
			Shape: abstract.ClosedShape(length),
			Value: abstract.AnyValue(),
		}}, nil
	}

	dims := make([]int32, len(shape))
	for i, d := range shape {
		dims[i] = int32(d)
	}

	value, err := tensor.New([]int{len(dims)}, dims)
	if err != nil {
		return nil, err
	}

	return []abstract.Descriptor{{
		Type:  abstract.ExactType(dtype.I32),
		Shape: abstract.FromConcrete([]int{len(dims)}),
		Value: abstract.ExactValue(value),
	}}, nil
}

// InferBackward recovers the input's shape from the output's concrete
// value when known, or just its rank from the output's own shape
// otherwise, mirroring Shape::infer_backward.
func (ShapeOp) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Shape"); err != nil {
		return nil, err
	}

	if v, err := outputs[0].Value.Concretize(); err == nil {
		dims, err := v.Int32s()
		if err != nil {
			return nil, err
		}

		shape := make([]abstract.Dim, len(dims))
		for i, d := range dims {
			shape[i] = abstract.KnownDim(int(d))
		}

		return []abstract.Descriptor{{
			Type:  abstract.AnyType(),
			Shape: abstract.ClosedShape(shape...),
			Value: abstract.AnyValue(),
		}}, nil
	}

	rank, err := outputs[0].Shape.Concretize()
	if err != nil || len(rank) != 1 {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	dims := make([]abstract.Dim, rank[0])
	for i := range dims {
		dims[i] = abstract.AnyDim()
	}

	return []abstract.Descriptor{{
		Type:  abstract.AnyType(),
		Shape: abstract.ClosedShape(dims...),
		Value: abstract.AnyValue(),
	}}, nil
}
