package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// Arithmetic implements the elementwise binary numeric operators (Add,
// Sub, Mul, Div) with NumPy/TF-style broadcasting. The original source
// has no standalone arithmetic op among the files retrieved here; this
// is supplemented directly from spec.md §4.2's binary-operator
// contract, following the same Eval/InferForward/InferBackward shape as
// the array ops it sits beside.
type Arithmetic struct {
	kind string
	fn   func(a, b float64) float64
}

func newArithmetic(kind string) *Arithmetic {
	var fn func(a, b float64) float64

	switch kind {
	case "Add":
		fn = func(a, b float64) float64 { return a + b }
	case "Sub":
		fn = func(a, b float64) float64 { return a - b }
	case "Mul":
		fn = func(a, b float64) float64 { return a * b }
	case "Div":
		fn = func(a, b float64) float64 { return a / b }
	}

	return &Arithmetic{kind: kind, fn: fn}
}

func buildAdd(map[string]interface{}) (op.Op, error) { return newArithmetic("Add"), nil }
func buildSub(map[string]interface{}) (op.Op, error) { return newArithmetic("Sub"), nil }
func buildMul(map[string]interface{}) (op.Op, error) { return newArithmetic("Mul"), nil }
func buildDiv(map[string]interface{}) (op.Op, error) { return newArithmetic("Div"), nil }

// OpType returns the operator's name (Add, Sub, Mul, or Div).
func (a *Arithmetic) OpType() string { return a.kind }

// Eval broadcasts its two inputs and applies the operator elementwise,
// producing a result in the first input's element type.
func (a *Arithmetic) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if err := requireArity(len(inputs), 2, a.kind); err != nil {
		return nil, err
	}

	lhs, rhs := inputs[0], inputs[1]
	if lhs.ElementType() != rhs.ElementType() {
		return nil, fmt.Errorf("%w: %s requires matching element types", op.ErrTypeMismatch, a.kind)
	}

	outShape, err := broadcastShapes(lhs.Shape(), rhs.Shape())
	if err != nil {
		return nil, err
	}

	la, err := lhs.AsFloat64()
	if err != nil {
		return nil, err
	}

	ra, err := rhs.AsFloat64()
	if err != nil {
		return nil, err
	}

	size := product(outShape)
	out := make([]float64, size)

	for i := 0; i < size; i++ {
		li := broadcastIndex(i, outShape, lhs.Shape())
		ri := broadcastIndex(i, outShape, rhs.Shape())
		out[i] = a.fn(la[li], ra[ri])
	}

	t64, err := tensor.New(outShape, out)
	if err != nil {
		return nil, err
	}

	if t64.ElementType() == lhs.ElementType() {
		return []*tensor.Tensor{t64}, nil
	}

	cast, err := t64.Cast(lhs.ElementType())
	if err != nil {
		return nil, err
	}

	return []*tensor.Tensor{cast}, nil
}

// InferForward evaluates eagerly when both inputs are concrete;
// otherwise it reports the broadcast shape when both input shapes are
// known.
func (a *Arithmetic) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(inputs), 2, a.kind); err != nil {
		return nil, err
	}

	if out, ok, err := tryConcreteForward(a, inputs); ok {
		return out, err
	}

	typ, err := abstract.MeetType(inputs[0].Type, inputs[1].Type)
	if err != nil {
		return nil, err
	}

	shape, err := broadcastMeetShape(inputs[0].Shape, inputs[1].Shape)
	if err != nil {
		return nil, err
	}

	return []abstract.Descriptor{{Type: typ, Shape: shape, Value: abstract.AnyValue()}}, nil
}

// InferBackward reports two unconstrained inputs sharing the output's
// type.
func (a *Arithmetic) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	if err := requireArity(len(outputs), 1, a.kind); err != nil {
		return nil, err
	}

	side := abstract.Descriptor{Type: outputs[0].Type, Shape: abstract.AnyShape(), Value: abstract.AnyValue()}

	return []abstract.Descriptor{side, side}, nil
}
