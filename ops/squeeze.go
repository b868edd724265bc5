package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Squeeze removes the configured axes from its input's shape, grounded
// on original_source/src/ops/array/mod.rs's Squeeze op. Axes are
// applied highest-first so earlier removals don't shift the indices of
// axes still to be removed, matching the original's sort-and-reverse at
// build time.
type Squeeze struct {
	dims []int
}

func buildSqueeze(attrs map[string]interface{}) (op.Op, error) {
	dims, err := intListAttr(attrs, "squeeze_dims")
	if err != nil {
		return nil, err
	}

	return &Squeeze{dims: sortedDescendingInts(dims)}, nil
}

// OpType returns "Squeeze".
func (s *Squeeze) OpType() string { return "Squeeze" }

func (s *Squeeze) squeezeShape(shape []int) ([]int, error) {
	out := append([]int(nil), shape...)

	for _, d := range s.dims {
		if d < 0 {
			return nil, fmt.Errorf("%w: Squeeze with negative axis is unsupported", op.ErrUnsupportedAttribute)
		}

		var err error

		out, err = removeAt(out, d)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Eval removes the configured axes from the input's shape.
func (s *Squeeze) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 1, "Squeeze"); err != nil {
		return nil, err
	}

	data := inputs[0]

	shape, err := s.squeezeShape(data.Shape())
	if err != nil {
		return nil, err
	}

	out, err := data.Reshape(shape)
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{out}, nil
}

// InferForward evaluates eagerly when the input is concrete; otherwise
// it squeezes the input's concrete shape if known.
func (s *Squeeze) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 1, "Squeeze"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(s, inputs); ok {
		return out, err
	}

	shape, err := inputs[0].Shape.Concretize()
	if err != nil {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	squeezed, err := s.squeezeShape(shape)
	if err != nil {
		return nil, err
	}

	return []abstract.Descriptor{{
		Type:  inputs[0].Type,
		Shape: abstract.FromConcrete(squeezed),
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward reports an unconstrained input, mirroring
// Squeeze::infer_backward.
func (s *Squeeze) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "Squeeze"); err != nil {
		return nil, err
	}

	return []abstract.Descriptor{
		{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()},
	}, nil
}
