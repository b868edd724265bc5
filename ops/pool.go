package ops

import (
	"fmt"
	"math"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Pool implements MaxPool and AvgPool over an [N,H,W,C] input, grounded
// on the ksize/strides/padding attribute contract pinned down by
// original_source/conform/tests/ops_nn_pools.rs (4-element ksize and
// strides lists, padding in {VALID, SAME}, NHWC layout). The original
// source's own pooling op implementation was not among the files
// retrieved, so the windowing arithmetic here follows the standard
// TensorFlow SAME/VALID convention directly.
type Pool struct {
	kind           string
	ksize, strides [4]int
	padding        string
}

func newPool(kind string, attrs map[string]interface{}) (op.Op, error) {
	ksize, err := intListAttr(attrs, "ksize")
	if err != nil {
		return nil, err
	}

	strides, err := intListAttr(attrs, "strides")
	if err != nil {
		return nil, err
	}

	padding, err := stringAttr(attrs, "padding")
	if err != nil {
		return nil, err
	}

	if len(ksize) != 4 || len(strides) != 4 {
		return nil, fmt.Errorf("%w: %s ksize/strides must have 4 elements", op.ErrUnsupportedAttribute, kind)
	}

	if padding != "VALID" && padding != "SAME" {
		return nil, fmt.Errorf("%w: %s padding must be VALID or SAME", op.ErrUnsupportedAttribute, kind)
	}

	p := &Pool{kind: kind, padding: padding}
	copy(p.ksize[:], ksize)
	copy(p.strides[:], strides)

	return p, nil
}

func buildMaxPool(attrs map[string]interface{}) (op.Op, error) { return newPool("MaxPool", attrs) }
func buildAvgPool(attrs map[string]interface{}) (op.Op, error) { return newPool("AvgPool", attrs) }

// OpType returns "MaxPool" or "AvgPool".
func (p *Pool) OpType() string { return p.kind }

func outputSize(in, k, stride int, padding string) (out, padBefore int) {
	if padding == "VALID" {
		out = (in-k)/stride + 1
		if out < 0 {
			out = 0
		}

		return out, 0
	}

	out = (in + stride - 1) / stride
	padTotal := (out-1)*stride + k - in

	if padTotal < 0 {
		padTotal = 0
	}

	return out, padTotal / 2
}

// Eval pools over the H and W axes of an [N,H,W,C] tensor. Windows that
// extend past the input's edge (possible only under SAME padding; VALID
// keeps every window in bounds) only aggregate the in-bounds elements
// rather than reading a zero-padded border.
func (p *Pool) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 1, p.kind); err != nil {
		return nil, err
	}

	data := inputs[0]
	shape := data.Shape()

	if len(shape) != 4 {
		return nil, fmt.Errorf("%w: %s expects a rank-4 [N,H,W,C] input", op.ErrShapeMismatch, p.kind)
	}

	n, h, w, c := shape[0], shape[1], shape[2], shape[3]
	kh, kw := p.ksize[1], p.ksize[2]
	sh, sw := p.strides[1], p.strides[2]

	outH, padTop := outputSize(h, kh, sh, p.padding)
	outW, padLeft := outputSize(w, kw, sw, p.padding)

	vals, err := data.AsFloat64()
	if err != nil {
		return nil, err
	}

	idx := func(ni, hi, wi, ci int) int {
		return ((ni*h+hi)*w+wi)*c + ci
	}

	out := make([]float64, n*outH*outW*c)
	oi := func(ni, hi, wi, ci int) int {
		return ((ni*outH+hi)*outW+wi)*c + ci
	}

	for ni := 0; ni < n; ni++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				hStart := oh*sh - padTop
				wStart := ow*sw - padLeft

				for ci := 0; ci < c; ci++ {
					var (
						acc   float64
						count int
						first = true
					)

					if p.kind == "MaxPool" {
						acc = math.Inf(-1)
					}

					for dh := 0; dh < kh; dh++ {
						hi := hStart + dh
						if hi < 0 || hi >= h {
							continue
						}

						for dw := 0; dw < kw; dw++ {
							wi := wStart + dw
							if wi < 0 || wi >= w {
								continue
							}

							v := vals[idx(ni, hi, wi, ci)]

							if p.kind == "MaxPool" {
								if first || v > acc {
									acc = v
								}
							} else {
								acc += v
							}

							count++
							first = false
						}
					}

					if p.kind == "AvgPool" && count > 0 {
						acc /= float64(count)
					}

					out[oi(ni, oh, ow, ci)] = acc
				}
			}
		}
	}

	t64, err := tensor.New([]int{n, outH, outW, c}, out)
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

// InferForward evaluates eagerly when the input is concrete; otherwise
// it computes the output shape from a concrete input shape.
func (p *Pool) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 1, p.kind); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(p, inputs); ok {
		return out, err
	}

	shape, err := inputs[0].Shape.Concretize()
	if err != nil || len(shape) != 4 {
		return []abstract.Descriptor{abstract.Any()}, nil
	}

	outH, _ := outputSize(shape[1], p.ksize[1], p.strides[1], p.padding)
	outW, _ := outputSize(shape[2], p.ksize[2], p.strides[2], p.padding)

	return []abstract.Descriptor{{
		Type:  inputs[0].Type,
		Shape: abstract.FromConcrete([]int{shape[0], outH, outW, shape[3]}),
		Value: abstract.AnyValue(),
	}}, nil
}

// InferBackward reports an unconstrained rank-4 input.
func (p *Pool) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, p.kind); err != nil {
		return nil, err
	}

	return []abstract.Descriptor{
		{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()},
	}, nil
}
