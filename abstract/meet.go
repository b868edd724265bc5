package abstract

import "fmt"

// MeetType computes the most precise type compatible with both a and b.
// Exactly(x) meet Exactly(y) is Exactly(x) if x==y, else a conflict.
func MeetType(a, b AType) (AType, error) {
	if !a.IsKnown() {
		return b, nil
	}

	if !b.IsKnown() {
		return a, nil
	}

	if a.Value() != b.Value() {
		return AType{}, fmt.Errorf("%w: type %s vs %s", ErrConflict, a.Value(), b.Value())
	}

	return a, nil
}

// MeetDim computes the most precise dimension compatible with both.
func MeetDim(a, b Dim) (Dim, error) {
	if !a.IsKnown() {
		return b, nil
	}

	if !b.IsKnown() {
		return a, nil
	}

	if a.Value() != b.Value() {
		return Dim{}, fmt.Errorf("%w: dimension %d vs %d", ErrConflict, a.Value(), b.Value())
	}

	return a, nil
}

// MeetShape computes the most precise shape compatible with both. A
// closed shape meets an open shape by matching the open prefix and
// adopting the closed rank; mismatched ranks between two closed shapes,
// or a prefix longer than a closed shape's rank, are conflicts.
func MeetShape(a, b Shape) (Shape, error) {
	if a.IsOpen() && b.IsOpen() {
		return meetPrefix(a, b, false)
	}

	if !a.IsOpen() && !b.IsOpen() {
		if a.Rank() != b.Rank() {
			return Shape{}, fmt.Errorf("%w: rank %d vs %d", ErrConflict, a.Rank(), b.Rank())
		}

		return meetPrefix(a, b, true)
	}

	// One open, one closed: the closed shape's rank wins.
	open, closed := a, b
	if !a.IsOpen() {
		open, closed = b, a
	}

	if open.Rank() > closed.Rank() {
		return Shape{}, fmt.Errorf("%w: open prefix longer than closed rank %d", ErrConflict, closed.Rank())
	}

	return meetPrefix(Shape{dims: open.dims, closed: true}, closed, true)
}

func meetPrefix(a, b Shape, closed bool) (Shape, error) {
	n := len(a.dims)
	if len(b.dims) > n {
		n = len(b.dims)
	}

	dims := make([]Dim, n)

	for i := 0; i < n; i++ {
		var da, db Dim
		if i < len(a.dims) {
			da = a.dims[i]
		}
		if i < len(b.dims) {
			db = b.dims[i]
		}

		d, err := MeetDim(da, db)
		if err != nil {
			return Shape{}, err
		}

		dims[i] = d
	}

	return Shape{dims: dims, closed: closed}, nil
}

// MeetValue computes the most precise value compatible with both.
func MeetValue(a, b AValue) (AValue, error) {
	if !a.IsKnown() {
		return b, nil
	}

	if !b.IsKnown() {
		return a, nil
	}

	if !a.value.Equal(b.value) {
		return AValue{}, fmt.Errorf("%w: conflicting concrete values", ErrConflict)
	}

	return a, nil
}

// Meet computes the meet of two descriptors component-wise, as used by
// the analyser's fixed-point loop (spec §4.6).
func Meet(a, b Descriptor) (Descriptor, error) {
	t, err := MeetType(a.Type, b.Type)
	if err != nil {
		return Descriptor{}, err
	}

	s, err := MeetShape(a.Shape, b.Shape)
	if err != nil {
		return Descriptor{}, err
	}

	v, err := MeetValue(a.Value, b.Value)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{Type: t, Shape: s, Value: v}, nil
}
