package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/dtype"
)

func TestNewShapeMismatch(t *testing.T) {
	_, err := New([]int{2, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestReshapeSharesBuffer(t *testing.T) {
	orig, err := New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	reshaped, err := orig.Reshape([]int{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, reshaped.Shape())

	origData, _ := orig.Float32s()
	reshapedData, _ := reshaped.Float32s()
	assert.Equal(t, origData, reshapedData)
}

func TestReshapeProductMismatch(t *testing.T) {
	orig, err := New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	_, err = orig.Reshape([]int{4, 4})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewFromPackedLittleEndian(t *testing.T) {
	raw := []byte{0, 0, 128, 63, 0, 0, 0, 64} // 1.0f32, 2.0f32
	tn, err := NewFromPacked(dtype.F32, []int{2}, raw)
	require.NoError(t, err)

	data, err := tn.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1.0, 2.0}, data)
}

func TestCastRoundTrip(t *testing.T) {
	orig, err := New([]int{3}, []int32{1, 2, 3})
	require.NoError(t, err)

	casted, err := orig.Cast(dtype.F32)
	require.NoError(t, err)
	assert.Equal(t, dtype.F32, casted.ElementType())

	data, err := casted.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, data)
}

func TestApproximatelyEqual(t *testing.T) {
	a, err := New([]int{4}, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := New([]int{4}, []float32{1.01, 1.99, 3.02, 3.98})
	require.NoError(t, err)

	ok, err := a.ApproximatelyEqual(b)
	require.NoError(t, err)
	assert.True(t, ok)

	c, err := New([]int{4}, []float32{100, 200, 300, 400})
	require.NoError(t, err)
	ok, err = a.ApproximatelyEqual(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApproximatelyEqualShapeMismatch(t *testing.T) {
	a, err := New([]int{4}, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := New([]int{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	ok, err := a.ApproximatelyEqual(b)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTypedAccessorMismatch(t *testing.T) {
	tn, err := New([]int{2}, []float32{1, 2})
	require.NoError(t, err)

	_, err = tn.Int32s()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestClone(t *testing.T) {
	orig, err := New([]int{2}, []float32{1, 2})
	require.NoError(t, err)

	clone := orig.Clone()
	cloneData, _ := clone.Float32s()
	cloneData[0] = 99

	origData, _ := orig.Float32s()
	assert.Equal(t, float32(1), origData[0])
}
