package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/tensor"
)

func TestShapeOpEval(t *testing.T) {
	data, err := tensor.New([]int{2, 3, 4}, make([]float32, 24))
	require.NoError(t, err)

	s := ShapeOp{}
	out, err := s.Eval([]*tensor.Tensor{data})
	require.NoError(t, err)

	vals, err := out[0].Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3, 4}, vals)
}

func TestShapeOpInferForwardConcreteShape(t *testing.T) {
	s := ShapeOp{}
	in := abstract.Descriptor{Type: abstract.ExactType(dtype.F32), Shape: abstract.FromConcrete([]int{2, 3}), Value: abstract.AnyValue()}

	out, err := s.InferForward([]abstract.Descriptor{in})
	require.NoError(t, err)

	val, err := out[0].Value.Concretize()
	require.NoError(t, err)

	vals, err := val.Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3}, vals)
}
