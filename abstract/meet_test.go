package abstract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/dtype"
)

func TestMeetIdempotent(t *testing.T) {
	d := Descriptor{
		Type:  ExactType(dtype.F32),
		Shape: ClosedShape(KnownDim(2), KnownDim(3)),
		Value: AnyValue(),
	}

	out, err := Meet(d, d)
	require.NoError(t, err)
	assert.Equal(t, d, out)
}

func TestMeetAnyIsIdentity(t *testing.T) {
	d := Descriptor{Type: ExactType(dtype.F32), Shape: ClosedShape(KnownDim(4)), Value: AnyValue()}

	out, err := Meet(Any(), d)
	require.NoError(t, err)
	assert.Equal(t, d, out)
}

func TestMeetTypeConflict(t *testing.T) {
	_, err := MeetType(ExactType(dtype.F32), ExactType(dtype.I32))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMeetShapeOpenClosed(t *testing.T) {
	open := OpenShape(KnownDim(1), AnyDim())
	closed := ClosedShape(KnownDim(1), KnownDim(5), KnownDim(7))

	out, err := MeetShape(open, closed)
	require.NoError(t, err)
	assert.False(t, out.IsOpen())

	concrete, err := out.Concretize()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 7}, concrete)
}

func TestMeetShapeRankConflict(t *testing.T) {
	a := ClosedShape(KnownDim(2))
	b := ClosedShape(KnownDim(2), KnownDim(3))

	_, err := MeetShape(a, b)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMeetDimConflict(t *testing.T) {
	_, err := MeetDim(KnownDim(2), KnownDim(3))
	assert.ErrorIs(t, err, ErrConflict)
}
