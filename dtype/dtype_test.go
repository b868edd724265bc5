package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteWidth(t *testing.T) {
	cases := []struct {
		typ   Type
		width int
	}{
		{F32, 4},
		{F64, 8},
		{I32, 4},
		{I8, 1},
		{U8, 1},
		{Bytes, 0},
	}

	for _, c := range cases {
		t.Run(c.typ.String(), func(t *testing.T) {
			assert.Equal(t, c.width, c.typ.ByteWidth())
		})
	}
}

func TestIsFixedWidth(t *testing.T) {
	assert.True(t, F32.IsFixedWidth())
	assert.False(t, Bytes.IsFixedWidth())
	assert.False(t, Invalid.IsFixedWidth())
}

func TestString(t *testing.T) {
	assert.Equal(t, "f32", F32.String())
	assert.Contains(t, Type(99).String(), "dtype(99)")
}
