package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/tensor"
)

func TestArithmeticAddBroadcast(t *testing.T) {
	a, err := tensor.New([]int{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	b, err := tensor.New([]int{2}, []float32{10, 20})
	require.NoError(t, err)

	add := newArithmetic("Add")
	out, err := add.Eval([]*tensor.Tensor{a, b})
	require.NoError(t, err)

	vals, err := out[0].Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{11, 22, 13, 24}, vals)
}

func TestArithmeticTypeMismatch(t *testing.T) {
	a, err := tensor.New([]int{1}, []float32{1})
	require.NoError(t, err)

	b, err := tensor.New([]int{1}, []int32{1})
	require.NoError(t, err)

	add := newArithmetic("Add")
	_, err = add.Eval([]*tensor.Tensor{a, b})
	assert.Error(t, err)
}

func TestCastEval(t *testing.T) {
	a, err := tensor.New([]int{2}, []float32{1.5, 2.5})
	require.NoError(t, err)

	c, err := buildCast(map[string]interface{}{"DstT": dtype.I32})
	require.NoError(t, err)

	out, err := c.Eval([]*tensor.Tensor{a})
	require.NoError(t, err)

	vals, err := out[0].Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, vals)
}
