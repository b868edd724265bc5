package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// StridedSlice extracts a strided sub-tensor given begin/end/strides
// vectors as inputs 1-3. original_source/src/ops/array/mod.rs registers
// a StridedSlice op (reg.insert("StridedSlice", strided_slice::build))
// but its strided_slice.rs submodule was not retrieved; this
// implementation follows the standard tf.strided_slice contract
// described by spec.md §4.2 directly. begin_mask, end_mask and
// shrink_axis_mask are honoured; a nonzero ellipsis_mask or
// new_axis_mask is refused as an unsupported attribute.
type StridedSlice struct {
	beginMask, endMask, ellipsisMask, newAxisMask, shrinkAxisMask int
}

func buildStridedSlice(attrs map[string]interface{}) (op.Op, error) {
	s := &StridedSlice{}

	for attr, dst := range map[string]*int{
		"begin_mask":       &s.beginMask,
		"end_mask":         &s.endMask,
		"ellipsis_mask":    &s.ellipsisMask,
		"new_axis_mask":    &s.newAxisMask,
		"shrink_axis_mask": &s.shrinkAxisMask,
	} {
		if v, err := intAttr(attrs, attr); err == nil {
			*dst = v
		}
	}

	if s.ellipsisMask != 0 || s.newAxisMask != 0 {
		return nil, fmt.Errorf("%w: StridedSlice ellipsis_mask/new_axis_mask are not supported", op.ErrUnsupportedAttribute)
	}

	return s, nil
}

// OpType returns "StridedSlice".
func (s *StridedSlice) OpType() string { return "StridedSlice" }

func bit(mask, i int) bool { return mask&(1<<uint(i)) != 0 }

func (s *StridedSlice) bounds(shape []int, begin, end, strides []int32) ([]int, []int, []int, []bool, error) {
	rank := len(shape)
	if len(begin) != rank || len(end) != rank || len(strides) != rank {
		return nil, nil, nil, nil, fmt.Errorf("%w: StridedSlice begin/end/strides must match input rank", op.ErrShapeMismatch)
	}

	b := make([]int, rank)
	e := make([]int, rank)
	st := make([]int, rank)
	shrink := make([]bool, rank)

	for i := 0; i < rank; i++ {
		st[i] = int(strides[i])
		if st[i] == 0 {
			return nil, nil, nil, nil, fmt.Errorf("%w: StridedSlice stride must be nonzero", op.ErrUnsupportedAttribute)
		}

		bi := int(begin[i])
		ei := int(end[i])

		if bit(s.beginMask, i) {
			if st[i] > 0 {
				bi = 0
			} else {
				bi = shape[i] - 1
			}
		}

		if bit(s.endMask, i) {
			if st[i] > 0 {
				ei = shape[i]
			} else {
				ei = -1
			}
		}

		b[i] = bi
		e[i] = ei
		shrink[i] = bit(s.shrinkAxisMask, i)
	}

	return b, e, st, shrink, nil
}

// Eval extracts the strided sub-tensor and drops any shrunk axes.
func (s *StridedSlice) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 4, "StridedSlice"); err != nil {
		return nil, err
	}

	data := inputs[0]
	shape := data.Shape()

	begin, err := inputs[1].Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: StridedSlice begin must be i32", op.ErrTypeMismatch)
	}

	end, err := inputs[2].Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: StridedSlice end must be i32", op.ErrTypeMismatch)
	}

	strides, err := inputs[3].Int32s()
	if err != nil {
		return nil, fmt.Errorf("%w: StridedSlice strides must be i32", op.ErrTypeMismatch)
	}

	b, e, st, shrink, err := s.bounds(shape, begin, end, strides)
	if err != nil {
		return nil, err
	}

	vals, err := data.AsFloat64()
	if err != nil {
		return nil, err
	}

	strideOf := make([]int, len(shape))
	strideOf[len(shape)-1] = 1

	for i := len(shape) - 2; i >= 0; i-- {
		strideOf[i] = strideOf[i+1] * shape[i+1]
	}

	var outDims []int

	for i := range shape {
		n := 0
		if st[i] > 0 {
			for v := b[i]; v < e[i]; v += st[i] {
				n++
			}
		} else {
			for v := b[i]; v > e[i]; v += st[i] {
				n++
			}
		}

		if !shrink[i] {
			outDims = append(outDims, n)
		}
	}

	var out []float64

	var walk func(dim int, idx []int)

	walk = func(dim int, idx []int) {
		if dim == len(shape) {
			flat := 0
			for i, v := range idx {
				flat += v * strideOf[i]
			}

			out = append(out, vals[flat])

			return
		}

		if st[dim] > 0 {
			for v := b[dim]; v < e[dim]; v += st[dim] {
				walk(dim+1, append(idx, v))
			}
		} else {
			for v := b[dim]; v > e[dim]; v += st[dim] {
				walk(dim+1, append(idx, v))
			}
		}
	}

	walk(0, nil)

	t64, err := tensor.New(outDims, out)
	if err != nil {
		return nil, err
	}

	if t64.ElementType() == data.ElementType() {
		return []*tensor.Tensor{t64}, nil
	}

	cast, err := t64.Cast(data.ElementType())
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{cast}, nil
}

// InferForward evaluates eagerly when all four inputs are concrete;
// shape-only inference without a concrete begin/end/strides is not
// attempted since masks already make the rank-preservation ambiguous.
func (s *StridedSlice) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 4, "StridedSlice"); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(s, inputs); ok {
		return out, err
	}

	return []abstract.Descriptor{abstract.Any()}, nil
}

// InferBackward reports an unconstrained data input and i32 index
// inputs.
func (s *StridedSlice) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, "StridedSlice"); err != nil {
		return nil, err
	}

	idx := abstract.Descriptor{Type: abstract.ExactType(dtype.I32), Shape: abstract.AnyShape(), Value: abstract.AnyValue()}

	return []abstract.Descriptor{
		{Type: abstract.AnyType(), Shape: abstract.AnyShape(), Value: abstract.AnyValue()},
		idx, idx, idx,
	}, nil
}
