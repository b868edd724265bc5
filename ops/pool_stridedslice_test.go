package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/tensor"
)

func TestMaxPoolValid(t *testing.T) {
	data, err := tensor.New([]int{1, 4, 4, 1}, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	require.NoError(t, err)

	p, err := buildMaxPool(map[string]interface{}{
		"ksize":   []int{1, 2, 2, 1},
		"strides": []int{1, 2, 2, 1},
		"padding": "VALID",
	})
	require.NoError(t, err)

	out, err := p.Eval([]*tensor.Tensor{data})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2, 1}, out[0].Shape())

	vals, err := out[0].Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 8, 14, 16}, vals)
}

func TestAvgPoolValid(t *testing.T) {
	data, err := tensor.New([]int{1, 2, 2, 1}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	p, err := buildAvgPool(map[string]interface{}{
		"ksize":   []int{1, 2, 2, 1},
		"strides": []int{1, 2, 2, 1},
		"padding": "VALID",
	})
	require.NoError(t, err)

	out, err := p.Eval([]*tensor.Tensor{data})
	require.NoError(t, err)

	vals, err := out[0].Float32s()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, vals[0], 1e-6)
}

func TestStridedSliceBasic(t *testing.T) {
	data, err := tensor.New([]int{5}, []float32{0, 1, 2, 3, 4})
	require.NoError(t, err)

	begin, err := tensor.New([]int{1}, []int32{1})
	require.NoError(t, err)

	end, err := tensor.New([]int{1}, []int32{4})
	require.NoError(t, err)

	strides, err := tensor.New([]int{1}, []int32{1})
	require.NoError(t, err)

	s, err := buildStridedSlice(map[string]interface{}{})
	require.NoError(t, err)

	out, err := s.Eval([]*tensor.Tensor{data, begin, end, strides})
	require.NoError(t, err)

	vals, err := out[0].Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vals)
}
