package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/tensor"
)

func TestConcatV2Eval(t *testing.T) {
	a, err := tensor.New([]int{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	b, err := tensor.New([]int{2, 2}, []float32{5, 6, 7, 8})
	require.NoError(t, err)

	axis, err := tensor.New([]int{1}, []int32{0})
	require.NoError(t, err)

	c, err := buildConcatV2(map[string]interface{}{"N": 2})
	require.NoError(t, err)

	out, err := c.Eval([]*tensor.Tensor{a, b, axis})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, out[0].Shape())

	vals, err := out[0].Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, vals)
}

func TestPackEvalNewAxis(t *testing.T) {
	a, err := tensor.New([]int{2}, []float32{1, 2})
	require.NoError(t, err)

	b, err := tensor.New([]int{2}, []float32{3, 4})
	require.NoError(t, err)

	p, err := buildPack(map[string]interface{}{"N": 2, "axis": 0})
	require.NoError(t, err)

	out, err := p.Eval([]*tensor.Tensor{a, b})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, out[0].Shape())

	vals, err := out[0].Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, vals)
}
