package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// ConcatV2 concatenates N tensors along an axis given by its final
// input, grounded on original_source/src/ops/array/mod.rs's ConcatV2
// op. Unlike the original, which only supports f32, this concatenates
// tensors of any shared numeric element type, widening through float64
// and casting the result back, since the spec's tensors are not
// restricted to a single dtype.
type ConcatV2 struct {
	n int
}

func buildConcatV2(attrs map[string]interface{}) (op.Op, error) {
	n, err := intAttr(attrs, "N")
	if err != nil {
		return nil, err
	}

	return &ConcatV2{n: n}, nil
}

// OpType returns "ConcatV2".
func (c *ConcatV2) OpType() string { return "ConcatV2" }

func concatAxis(mats []*tensor.Tensor, axis int) (*tensor.Tensor, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("%w: ConcatV2 requires at least one tensor", op.ErrWrongArity)
	}

	rank := mats[0].Rank()
	if axis < 0 || axis >= rank {
		return nil, fmt.Errorf("%w: ConcatV2 axis %d out of range for rank %d", op.ErrShapeMismatch, axis, rank)
	}

	dt := mats[0].ElementType()
	outShape := append([]int(nil), mats[0].Shape()...)
	outShape[axis] = 0

	for _, m := range mats {
		if m.ElementType() != dt {
			return nil, fmt.Errorf("%w: ConcatV2 inputs must share an element type", op.ErrTypeMismatch)
		}

		sh := m.Shape()
		if len(sh) != rank {
			return nil, fmt.Errorf("%w: ConcatV2 inputs must share a rank", op.ErrShapeMismatch)
		}

		for i := 0; i < rank; i++ {
			if i != axis && sh[i] != outShape[i] {
				return nil, fmt.Errorf("%w: ConcatV2 inputs disagree outside the concat axis", op.ErrShapeMismatch)
			}
		}

		outShape[axis] += sh[axis]
	}

	outer, inner := 1, 1
	for i := 0; i < axis; i++ {
		outer *= outShape[i]
	}

	for i := axis + 1; i < rank; i++ {
		inner *= outShape[i]
	}

	widened := make([][]float64, len(mats))

	for i, m := range mats {
		v, err := m.AsFloat64()
		if err != nil {
			return nil, err
		}

		widened[i] = v
	}

	out := make([]float64, 0, product(outShape))

	for o := 0; o < outer; o++ {
		for i, m := range mats {
			axisLen := m.Shape()[axis]
			block := axisLen * inner
			start := o * block
			out = append(out, widened[i][start:start+block]...)
		}
	}

	t64, err := tensor.New(outShape, out)
	if err != nil {
		return nil, err
	}

	if dt == t64.ElementType() {
		return t64, nil
	}

	return t64.Cast(dt)
}

// Eval reads the axis from the (n+1)th input and stacks the first n.
func (c *ConcatV2) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), c.n+1, "ConcatV2"); err != nil {
		return nil, err
	}

	axisVals, err := inputs[c.n].Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: ConcatV2 axis must be i32", op.ErrTypeMismatch)
	}

	out, err := concatAxis(inputs[:c.n], int(axisVals[0]))
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{out}, nil
}

// InferForward evaluates eagerly when every input is concrete;
// otherwise it sums the concat axis across concrete input shapes when
// possible, and falls back to an unconstrained descriptor otherwise.
func (c *ConcatV2) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), c.n+1, "ConcatV2"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(c, inputs); ok {
		return out, err
	}

	axisT, err := inputs[c.n].Value.Concretize()
	if err != nil {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	axisVals, err := axisT.Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: ConcatV2 axis must be i32", op.ErrTypeMismatch)
	}

	axis := int(axisVals[0])

	dims := make([][]abstract.Dim, c.n)

	for i := 0; i < c.n; i++ {
		if inputs[i].Shape.IsOpen() {
			return []abstract.Descriptor{abstract.Any()}, nil
		}

		dims[i] = inputs[i].Shape.Dims()
	}

	if axis < 0 || axis >= len(dims[0]) {
		return nil, fmt.Errorf("%w: ConcatV2 axis %d out of range", op.ErrShapeMismatch, axis)
	}

	out := append([]abstract.Dim(nil), dims[0]...)
	sum := 0

	for _, d := range dims {
		if !d[axis].IsKnown() {
			return []abstract.Descriptor{abstract.Any()}, nil
		}

		sum += d[axis].Value()
	}

	out[axis] = abstract.KnownDim(sum)

	return []abstract.Descriptor{{
		Type:  inputs[0].Type,
		Shape: abstract.ClosedShape(out...),
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward reports unconstrained data inputs and an i32 axis
// input.
func (c *ConcatV2) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "ConcatV2"); err != nil {
		return nil, err
	}

	result := make([]abstract.Descriptor, c.n+1)
	for i := 0; i < c.n; i++ {
		result[i] = abstract.Descriptor{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()}
	}

	result[c.n] = abstract.Descriptor{Type: abstract.ExactType(dtype.I32), Shape: abstract.AnyShape(), Value: abstract.AnyValue()}

	return result, nil
}
