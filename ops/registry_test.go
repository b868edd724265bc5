package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/registry"
	"github.com/tensorlace/graphrun/tensor"
)

func TestRegisterAllBuildsEveryOp(t *testing.T) {
	reg := registry.New()
	RegisterAll(reg)

	cases := []struct {
		name  string
		attrs map[string]interface{}
	}{
		{"Placeholder", map[string]interface{}{"dtype": dtype.F32}},
		{"Identity", nil},
		{"Reshape", nil},
		{"ExpandDims", nil},
		{"Squeeze", map[string]interface{}{"squeeze_dims": []int{0}}},
		{"Shape", nil},
		{"ConcatV2", map[string]interface{}{"N": 2}},
		{"Pack", map[string]interface{}{"N": 2}},
		{"StridedSlice", map[string]interface{}{}},
		{"MaxPool", map[string]interface{}{"ksize": []int{1, 1, 1, 1}, "strides": []int{1, 1, 1, 1}, "padding": "VALID"}},
		{"AvgPool", map[string]interface{}{"ksize": []int{1, 1, 1, 1}, "strides": []int{1, 1, 1, 1}, "padding": "VALID"}},
		{"Add", nil},
		{"Sub", nil},
		{"Mul", nil},
		{"Div", nil},
		{"Cast", map[string]interface{}{"DstT": dtype.F32}},
	}

	for _, tc := range cases {
		built, err := reg.Build(tc.name, tc.attrs)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.name, built.OpType())
	}
}

func TestConstOp(t *testing.T) {
	v, err := tensor.New([]int{1}, []float32{42})
	require.NoError(t, err)

	c, err := buildConst(map[string]interface{}{"value": v})
	require.NoError(t, err)

	out, err := c.Eval(nil)
	require.NoError(t, err)
	assert.True(t, out[0].Equal(v))
}
