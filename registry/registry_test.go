package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

type noopOp struct{}

func (noopOp) OpType() string { return "Noop" }

func (noopOp) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) { return inputs, nil }

func (noopOp) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return inputs, nil
}

func (noopOp) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return outputs, nil
}

func TestUnimplementedFallback(t *testing.T) {
	r := New()

	built, err := r.Build("TotallyUnknownOp", nil)
	require.NoError(t, err)
	assert.Equal(t, "TotallyUnknownOp", built.OpType())

	_, err = built.Eval(nil)
	assert.ErrorIs(t, err, op.ErrUnimplementedOperator)

	_, err = built.InferForward([]abstract.Descriptor{abstract.Any()})
	assert.ErrorIs(t, err, op.ErrUnimplementedOperator)
}

func TestRegisterAndBuild(t *testing.T) {
	r := New()
	r.Register("Noop", func(attrs map[string]interface{}) (op.Op, error) {
		return noopOp{}, nil
	})

	built, err := r.Build("Noop", nil)
	require.NoError(t, err)
	assert.Equal(t, "Noop", built.OpType())
}
