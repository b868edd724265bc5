package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Pack stacks N tensors of identical shape along a new axis, producing
// one rank higher than its inputs. original_source/src/ops/array/mod.rs
// registers a Pack op (reg.insert("Pack", pack::pack)) but its
// pack.rs submodule was not retrieved; this implementation follows the
// standard tf.stack contract described by spec.md §4.2 directly.
type Pack struct {
	n    int
	axis int
}

func buildPack(attrs map[string]interface{}) (op.Op, error) {
	n, err := intAttr(attrs, "N")
	if err != nil {
		return nil, err
	}

	axis, err := intAttr(attrs, "axis")
	if err != nil {
		axis = 0
	}

	return &Pack{n: n, axis: axis}, nil
}

// OpType returns "Pack".
func (p *Pack) OpType() string { return "Pack" }

func packAxis(mats []*tensor.Tensor, axis int) (*tensor.Tensor, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("%w: Pack requires at least one tensor", op.ErrWrongArity)
	}

	rank := mats[0].Rank()
	if axis < 0 || axis > rank {
		return nil, fmt.Errorf("%w: Pack axis %d out of range for rank %d", op.ErrShapeMismatch, axis, rank)
	}

	dt := mats[0].ElementType()
	inShape := mats[0].Shape()

	for _, m := range mats {
		if m.ElementType() != dt {
			return nil, fmt.Errorf("%w: Pack inputs must share an element type", op.ErrTypeMismatch)
		}

		sh := m.Shape()
		if len(sh) != rank {
			return nil, fmt.Errorf("%w: Pack inputs must share a rank", op.ErrShapeMismatch)
		}

		for i := range sh {
			if sh[i] != inShape[i] {
				return nil, fmt.Errorf("%w: Pack inputs must share a shape", op.ErrShapeMismatch)
			}
		}
	}

	outShape, err := insertAt(inShape, axis, len(mats))
	if err != nil {
		return nil, err
	}

	outer, inner := 1, 1
	for i := 0; i < axis; i++ {
		outer *= inShape[i]
	}

	for i := axis; i < rank; i++ {
		inner *= inShape[i]
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
		for _, w := range widened {
			start := o * inner
			out = append(out, w[start:start+inner]...)
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

// Eval stacks its n inputs along the configured axis.
func (p *Pack) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), p.n, "Pack"); err != nil {
		return nil, err
	}

	out, err := packAxis(inputs, p.axis)
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{out}, nil
}

// InferForward evaluates eagerly when every input is concrete;
// otherwise it computes the output shape when every input's shape is
// concrete.
func (p *Pack) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), p.n, "Pack"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(p, inputs); ok {
		return out, err
	}

	if inputs[0].Shape.IsOpen() {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	shape, err := inputs[0].Shape.Concretize()
	if err != nil {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	outShape, err := insertAt(shape, p.axis, p.n)
	if err != nil {
		return nil, err
	}

	return []abstract.Descriptor{{
		Type:  inputs[0].Type,
		Shape: abstract.FromConcrete(outShape),
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward reports n unconstrained inputs sharing the output's
// type.
func (p *Pack) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Pack"); err != nil {
		return nil, err
	}

	result := make([]abstract.Descriptor, p.n)
	for i := range result {
		result[i] = abstract.Descriptor{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()}
	}

	return result, nil
}
