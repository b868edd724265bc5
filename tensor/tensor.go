// Package tensor implements the typed, immutable, shared N-dimensional
// array that flows along the edges of a computation graph.
package tensor

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tensorlace/graphrun/dtype"
)

// Tensor is an immutable, shareable N-dimensional array of a single
// element type. Callers share it by passing the pointer around; the
// contract forbids mutating a Tensor once it has been produced by an
// operator. A node that needs to mutate must first call Clone.
type Tensor struct {
	dt    dtype.Type
	shape []int
	f32   []float32
	f64   []float64
	i32   []int32
	i8    []int8
	u8    []uint8
	bytes [][]byte
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}

func validateShape(shape []int) error {
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
	}

	return nil
}

// New constructs a Tensor from a shape and a typed element slice. The
// element count implied by shape must equal len(data).
func New[T float32 | float64 | int32 | int8 | uint8](shape []int, data []T) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}

	size := product(shape)
	if size != len(data) {
		return nil, fmt.Errorf("%w: shape implies %d elements, got %d", ErrShapeMismatch, size, len(data))
	}

	shapeCopy := append([]int(nil), shape...)

	switch v := any(data).(type) {
	case []float32:
		return &Tensor{dt: dtype.F32, shape: shapeCopy, f32: v}, nil
	case []float64:
		return &Tensor{dt: dtype.F64, shape: shapeCopy, f64: v}, nil
	case []int32:
		return &Tensor{dt: dtype.I32, shape: shapeCopy, i32: v}, nil
	case []int8:
		return &Tensor{dt: dtype.I8, shape: shapeCopy, i8: v}, nil
	case []uint8:
		return &Tensor{dt: dtype.U8, shape: shapeCopy, u8: v}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported element type %T", ErrTypeMismatch, data)
	}
}

// NewBytes constructs a Tensor of the variable-width Bytes element type.
func NewBytes(shape []int, data [][]byte) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}

	if size := product(shape); size != len(data) {
		return nil, fmt.Errorf("%w: shape implies %d elements, got %d", ErrShapeMismatch, size, len(data))
	}

	return &Tensor{dt: dtype.Bytes, shape: append([]int(nil), shape...), bytes: data}, nil
}

// NewFromPacked decodes a little-endian packed byte buffer into a Tensor
// of the given fixed-width element type, as produced by a serialized
// tensor payload that packs its values (spec §6).
func NewFromPacked(dt dtype.Type, shape []int, raw []byte) (*Tensor, error) {
	if !dt.IsFixedWidth() {
		return nil, fmt.Errorf("%w: %s has no fixed-width packed representation", ErrTypeMismatch, dt)
	}

	size := product(shape)
	width := dt.ByteWidth()

	if len(raw) != size*width {
		return nil, fmt.Errorf("%w: packed buffer has %d bytes, expected %d", ErrShapeMismatch, len(raw), size*width)
	}

	switch dt {
	case dtype.F32:
		out := make([]float32, size)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}

		return New(shape, out)
	case dtype.F64:
		out := make([]float64, size)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}

		return New(shape, out)
	case dtype.I32:
		out := make([]int32, size)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}

		return New(shape, out)
	case dtype.I8:
		out := make([]int8, size)
		for i := range out {
			out[i] = int8(raw[i])
		}

		return New(shape, out)
	case dtype.U8:
		out := make([]uint8, size)
		copy(out, raw)

		return New(shape, out)
	default:
		return nil, fmt.Errorf("%w: unsupported packed dtype %s", ErrTypeMismatch, dt)
	}
}

// Shape returns the tensor's dimensions. Callers must not mutate it.
func (t *Tensor) Shape() []int { return t.shape }

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int { return len(t.shape) }

// ElementType returns the tensor's scalar element type.
func (t *Tensor) ElementType() dtype.Type { return t.dt }

// Size returns the total element count.
func (t *Tensor) Size() int { return product(t.shape) }

// Reshape returns a new Tensor with newShape, sharing the underlying
// buffer when the element count is unchanged.
func (t *Tensor) Reshape(newShape []int) (*Tensor, error) {
	if err := validateShape(newShape); err != nil {
		return nil, err
	}

	if product(newShape) != t.Size() {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShapeMismatch, t.shape, newShape)
	}

	out := *t
	out.shape = append([]int(nil), newShape...)

	return &out, nil
}

// Clone returns a deep copy, safe for in-place mutation by the caller.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{dt: t.dt, shape: append([]int(nil), t.shape...)}

	switch t.dt {
	case dtype.F32:
		out.f32 = append([]float32(nil), t.f32...)
	case dtype.F64:
		out.f64 = append([]float64(nil), t.f64...)
	case dtype.I32:
		out.i32 = append([]int32(nil), t.i32...)
	case dtype.I8:
		out.i8 = append([]int8(nil), t.i8...)
	case dtype.U8:
		out.u8 = append([]uint8(nil), t.u8...)
	case dtype.Bytes:
		out.bytes = make([][]byte, len(t.bytes))
		for i, b := range t.bytes {
			out.bytes[i] = append([]byte(nil), b...)
		}
	}

	return out
}

// Float32s returns the backing float32 slice, or an error if the
// tensor's element type is not F32.
func (t *Tensor) Float32s() ([]float32, error) {
	if t.dt != dtype.F32 {
		return nil, fmt.Errorf("%w: tensor holds %s, not f32", ErrTypeMismatch, t.dt)
	}

	return t.f32, nil
}

// Float64s returns the backing float64 slice.
func (t *Tensor) Float64s() ([]float64, error) {
	if t.dt != dtype.F64 {
		return nil, fmt.Errorf("%w: tensor holds %s, not f64", ErrTypeMismatch, t.dt)
	}

	return t.f64, nil
}

// Int32s returns the backing int32 slice.
func (t *Tensor) Int32s() ([]int32, error) {
	if t.dt != dtype.I32 {
		return nil, fmt.Errorf("%w: tensor holds %s, not i32", ErrTypeMismatch, t.dt)
	}

	return t.i32, nil
}

// Int8s returns the backing int8 slice.
func (t *Tensor) Int8s() ([]int8, error) {
	if t.dt != dtype.I8 {
		return nil, fmt.Errorf("%w: tensor holds %s, not i8", ErrTypeMismatch, t.dt)
	}

	return t.i8, nil
}

// Uint8s returns the backing uint8 slice.
func (t *Tensor) Uint8s() ([]uint8, error) {
	if t.dt != dtype.U8 {
		return nil, fmt.Errorf("%w: tensor holds %s, not u8", ErrTypeMismatch, t.dt)
	}

	return t.u8, nil
}

// ByteStrings returns the backing [][]byte slice.
func (t *Tensor) ByteStrings() ([][]byte, error) {
	if t.dt != dtype.Bytes {
		return nil, fmt.Errorf("%w: tensor holds %s, not bytes", ErrTypeMismatch, t.dt)
	}

	return t.bytes, nil
}

// AsFloat64 returns the tensor's elements widened to float64, for any
// numeric element type. It is the common path used by Cast and by
// ApproximatelyEqual.
func (t *Tensor) AsFloat64() ([]float64, error) {
	switch t.dt {
	case dtype.F32:
		out := make([]float64, len(t.f32))
		for i, v := range t.f32 {
			out[i] = float64(v)
		}

		return out, nil
	case dtype.F64:
		return t.f64, nil
	case dtype.I32:
		out := make([]float64, len(t.i32))
		for i, v := range t.i32 {
			out[i] = float64(v)
		}

		return out, nil
	case dtype.I8:
		out := make([]float64, len(t.i8))
		for i, v := range t.i8 {
			out[i] = float64(v)
		}

		return out, nil
	case dtype.U8:
		out := make([]float64, len(t.u8))
		for i, v := range t.u8 {
			out[i] = float64(v)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot widen %s to float64", ErrTypeMismatch, t.dt)
	}
}

// Cast returns a new Tensor with every element converted to target.
func (t *Tensor) Cast(target dtype.Type) (*Tensor, error) {
	if target == t.dt {
		return t, nil
	}

	vals, err := t.AsFloat64()
	if err != nil {
		return nil, err
	}

	switch target {
	case dtype.F32:
		out := make([]float32, len(vals))
		for i, v := range vals {
			out[i] = float32(v)
		}

		return New(t.shape, out)
	case dtype.F64:
		return New(t.shape, vals)
	case dtype.I32:
		out := make([]int32, len(vals))
		for i, v := range vals {
			out[i] = int32(v)
		}

		return New(t.shape, out)
	case dtype.I8:
		out := make([]int8, len(vals))
		for i, v := range vals {
			out[i] = int8(v)
		}

		return New(t.shape, out)
	case dtype.U8:
		out := make([]uint8, len(vals))
		for i, v := range vals {
			out[i] = uint8(v)
		}

		return New(t.shape, out)
	default:
		return nil, fmt.Errorf("%w: cannot cast to %s", ErrTypeMismatch, target)
	}
}

// Equal reports exact equality of element type, shape, and elements. It
// is used by the analyser's meet operation, which must distinguish
// genuinely conflicting concrete values from equal ones; it is not the
// cross-framework diffing relation (see ApproximatelyEqual).
func (t *Tensor) Equal(other *Tensor) bool {
	if t.dt != other.dt || t.Rank() != other.Rank() {
		return false
	}

	for i := range t.shape {
		if t.shape[i] != other.shape[i] {
			return false
		}
	}

	switch t.dt {
	case dtype.F32:
		return slicesEqual(t.f32, other.f32)
	case dtype.F64:
		return slicesEqual(t.f64, other.f64)
	case dtype.I32:
		return slicesEqual(t.i32, other.i32)
	case dtype.I8:
		return slicesEqual(t.i8, other.i8)
	case dtype.U8:
		return slicesEqual(t.u8, other.u8)
	case dtype.Bytes:
		if len(t.bytes) != len(other.bytes) {
			return false
		}

		for i := range t.bytes {
			if string(t.bytes[i]) != string(other.bytes[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func slicesEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// ApproximatelyEqual implements the cross-framework equivalence used by
// diffing tests (spec §4.1): both tensors are widened to float32 via
// float64, shapes must match exactly, and every element must lie within
// one tenth of the population standard deviation of the reference
// tensor's absolute values (the receiver). This tolerance, including the
// use of the mean of absolute values rather than the plain mean, is a
// heuristic inherited from the original source, not a principled bound.
func (t *Tensor) ApproximatelyEqual(other *Tensor) (bool, error) {
	if t.Rank() != other.Rank() {
		return false, nil
	}

	for i := range t.shape {
		if t.shape[i] != other.shape[i] {
			return false, nil
		}
	}

	t32, err := t.Cast(dtype.F32)
	if err != nil {
		return false, err
	}

	other32, err := other.Cast(dtype.F32)
	if err != nil {
		return false, err
	}

	a, err := t32.AsFloat64()
	if err != nil {
		return false, err
	}

	b, err := other32.AsFloat64()
	if err != nil {
		return false, err
	}

	if len(a) == 0 {
		return true, nil
	}

	abs := make([]float64, len(a))
	for i, v := range a {
		abs[i] = math.Abs(v)
	}

	avg := floats.Sum(abs) / float64(len(abs))

	sq := make([]float64, len(a))
	for i, v := range a {
		d := v - avg
		sq[i] = d * d
	}

	dev := math.Sqrt(floats.Sum(sq) / float64(len(sq)))
	tolerance := dev / 10.0

	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false, nil
		}
	}

	return true, nil
}
