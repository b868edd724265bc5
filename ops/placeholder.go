package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Placeholder is a graph input: a leaf node whose value is bound by the
// caller rather than computed, grounded on the Placeholder op in
// original_source/src/ops/array/mod.rs.
type Placeholder struct {
	dtype dtype.Type
}

func buildPlaceholder(attrs map[string]interface{}) (op.Op, error) {
	dt, err := dtypeAttr(attrs, "dtype")
	if err != nil {
		return nil, err
	}

	return &Placeholder{dtype: dt}, nil
}

// OpType returns "Placeholder".
func (p *Placeholder) OpType() string { return "Placeholder" }

// Eval always fails: a placeholder's value comes from the caller, not
// from evaluating its (nonexistent) inputs.
func (p *Placeholder) Eval(_ []*tensor.Tensor) ([]*tensor.Tensor, error) {
	return nil, fmt.Errorf("%w: Placeholder has no inputs to evaluate, bind its value instead", op.ErrWrongArity)
}

// InferForward reports the declared dtype and an otherwise unknown
// shape and value.
func (p *Placeholder) InferForward(_ []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return []abstract.Descriptor{{
		Type:  abstract.ExactType(p.dtype),
		Shape: abstract.AnyShape(),
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward always fails: a leaf has nothing upstream to infer.
func (p *Placeholder) InferBackward(_ []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return nil, fmt.Errorf("%w: Placeholder is a leaf, nothing to infer backward", op.ErrWrongArity)
}
