package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/tensor"
)

func TestExpandDimsEval(t *testing.T) {
	data, err := tensor.New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	dims, err := tensor.New([]int{1}, []int32{0})
	require.NoError(t, err)

	e := ExpandDims{}
	out, err := e.Eval([]*tensor.Tensor{data, dims})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out[0].Shape())
}

func TestExpandDimsNegativeAxisUnsupported(t *testing.T) {
	data, err := tensor.New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	dims, err := tensor.New([]int{1}, []int32{-1})
	require.NoError(t, err)

	e := ExpandDims{}
	_, err = e.Eval([]*tensor.Tensor{data, dims})
	assert.Error(t, err)
}

func TestSqueezeEval(t *testing.T) {
	data, err := tensor.New([]int{1, 3, 1}, []float32{1, 2, 3})
	require.NoError(t, err)

	s, err := buildSqueeze(map[string]interface{}{"squeeze_dims": []int{0, 2}})
	require.NoError(t, err)

	out, err := s.Eval([]*tensor.Tensor{data})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, out[0].Shape())
}

func TestSqueezeInferForwardUnknownShapeReturnsAny(t *testing.T) {
	s, err := buildSqueeze(map[string]interface{}{"squeeze_dims": []int{0}})
	require.NoError(t, err)

	out, err := s.InferForward([]abstract.Descriptor{{Type: abstract.ExactType(dtype.F32), Shape: abstract.AnyShape(), Value: abstract.AnyValue()}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Shape.IsOpen())
}
