// Package abstract implements the partial descriptors (type, shape,
// value) that the analyser flows over the graph instead of concrete
// tensors. Grounded on the abstract-tensor lattice of
// original_source/src/analyser/types.rs (ATensor/AType/AShape/ADimension/AValue).
package abstract

import (
	"fmt"

	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/tensor"
)

// Dim is an abstract dimension: either unknown or a concrete size.
type Dim struct {
	known bool
	value int
}

// AnyDim is the most general abstract dimension.
func AnyDim() Dim { return Dim{} }

// KnownDim returns a concrete abstract dimension.
func KnownDim(v int) Dim { return Dim{known: true, value: v} }

// IsKnown reports whether the dimension is concrete.
func (d Dim) IsKnown() bool { return d.known }

// Value returns the concrete size. Only valid when IsKnown is true.
func (d Dim) Value() int { return d.value }

func (d Dim) String() string {
	if !d.known {
		return "?"
	}

	return fmt.Sprintf("%d", d.value)
}

// Shape is an abstract shape: either a closed (fixed-rank) sequence of
// dimensions, or an open sequence describing only a known prefix.
type Shape struct {
	dims   []Dim
	closed bool
}

// AnyShape is the most general abstract shape: open with no known
// prefix.
func AnyShape() Shape { return Shape{} }

// ClosedShape builds a closed (fixed-rank) abstract shape.
func ClosedShape(dims ...Dim) Shape { return Shape{dims: dims, closed: true} }

// OpenShape builds an open abstract shape with the given known prefix.
func OpenShape(prefix ...Dim) Shape { return Shape{dims: prefix, closed: false} }

// FromConcrete builds a closed abstract shape from a concrete shape.
func FromConcrete(shape []int) Shape {
	dims := make([]Dim, len(shape))
	for i, d := range shape {
		dims[i] = KnownDim(d)
	}

	return ClosedShape(dims...)
}

// IsOpen reports whether the shape only describes a prefix.
func (s Shape) IsOpen() bool { return !s.closed }

// Dims returns the shape's dimension vector (the known prefix, for an
// open shape).
func (s Shape) Dims() []Dim { return s.dims }

// Rank returns the shape's rank. Only meaningful for a closed shape;
// callers should check IsOpen first.
func (s Shape) Rank() int { return len(s.dims) }

// Concretize returns the fully concrete shape, or an error if the shape
// is open or contains an unknown dimension.
func (s Shape) Concretize() ([]int, error) {
	if s.IsOpen() {
		return nil, fmt.Errorf("%w: shape is open", ErrNotConcrete)
	}

	out := make([]int, len(s.dims))
	for i, d := range s.dims {
		if !d.IsKnown() {
			return nil, fmt.Errorf("%w: dimension %d is unknown", ErrNotConcrete, i)
		}

		out[i] = d.Value()
	}

	return out, nil
}

// AType is an abstract element type: Any or exactly one dtype.Type.
type AType struct {
	known bool
	value dtype.Type
}

// AnyType is the most general abstract type.
func AnyType() AType { return AType{} }

// ExactType builds an abstract type pinned to a concrete dtype.
func ExactType(t dtype.Type) AType { return AType{known: true, value: t} }

// IsKnown reports whether the type is pinned.
func (a AType) IsKnown() bool { return a.known }

// Value returns the pinned dtype. Only valid when IsKnown is true.
func (a AType) Value() dtype.Type { return a.value }

// AValue is an abstract tensor value: Any or exactly one concrete
// Tensor.
type AValue struct {
	value *tensor.Tensor
}

// AnyValue is the most general abstract value.
func AnyValue() AValue { return AValue{} }

// ExactValue pins the abstract value to a concrete tensor.
func ExactValue(t *tensor.Tensor) AValue { return AValue{value: t} }

// IsKnown reports whether the value is pinned.
func (a AValue) IsKnown() bool { return a.value != nil }

// Concretize returns the pinned tensor, or an error if unknown.
func (a AValue) Concretize() (*tensor.Tensor, error) {
	if a.value == nil {
		return nil, fmt.Errorf("%w: value is Any", ErrNotConcrete)
	}

	return a.value, nil
}

// Descriptor is the partial (type, shape, value) triple that flows on a
// graph edge during abstract interpretation.
type Descriptor struct {
	Type  AType
	Shape Shape
	Value AValue
}

// Any is the most general descriptor: Any type, open empty shape, Any
// value. This is the descriptor every edge starts at (spec §3).
func Any() Descriptor {
	return Descriptor{Type: AnyType(), Shape: AnyShape(), Value: AnyValue()}
}

// FromTensor builds the fully concrete descriptor for a known tensor.
func FromTensor(t *tensor.Tensor) Descriptor {
	return Descriptor{
		Type:  ExactType(t.ElementType()),
		Shape: FromConcrete(t.Shape()),
		Value: ExactValue(t),
	}
}
