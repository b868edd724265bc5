package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/tensor"
)

func TestReshapeEvalResolvesNegativeOne(t *testing.T) {
	data, err := tensor.New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	dims, err := tensor.New([]int{2}, []int32{3, -1})
	require.NoError(t, err)

	r := Reshape{}
	out, err := r.Eval([]*tensor.Tensor{data, dims})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, out[0].Shape())
}

func TestReshapeInferForwardFromConcreteShape(t *testing.T) {
	dimsVal, err := tensor.New([]int{2}, []int32{3, -1})
	require.NoError(t, err)

	inputs := []abstract.Descriptor{
		{Type: abstract.ExactType(dtype.F32), Shape: abstract.FromConcrete([]int{2, 3}), Value: abstract.AnyValue()},
		{Type: abstract.ExactType(dtype.I32), Shape: abstract.FromConcrete([]int{2}), Value: abstract.ExactValue(dimsVal)},
	}

	r := Reshape{}
	out, err := r.InferForward(inputs)
	require.NoError(t, err)

	shape, err := out[0].Shape.Concretize()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, shape)
}

func TestReshapeInferBackward(t *testing.T) {
	r := Reshape{}
	out, err := r.InferBackward([]abstract.Descriptor{{Type: abstract.ExactType(dtype.F32), Shape: abstract.AnyShape(), Value: abstract.AnyValue()}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, dtype.I32, out[1].Type.Value())
}
