package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/graph"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

type stubOp struct{ name string }

func (s stubOp) OpType() string { return s.name }
func (s stubOp) Eval(inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	return inputs, nil
}
func (s stubOp) InferForward(inputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return inputs, nil
}
func (s stubOp) InferBackward(outputs []abstract.Descriptor) ([]abstract.Descriptor, error) {
	return outputs, nil
}

var _ op.Op = stubOp{}

func TestBuilderResolvesForwardReference(t *testing.T) {
	b := graph.NewBuilder()

	require.NoError(t, b.AddNode("consumer", stubOp{"Consumer"}, []graph.NamedInput{{Name: "producer", Slot: 0}}, 1, nil))
	require.NoError(t, b.AddNode("producer", stubOp{"Producer"}, nil, 1, nil))

	g, err := b.Build()
	require.NoError(t, err)

	consumer, err := g.NodeByName("consumer")
	require.NoError(t, err)

	producer, err := g.NodeByName("producer")
	require.NoError(t, err)

	assert.Equal(t, producer.ID(), consumer.Inputs()[0].Node)
}

func TestBuilderRejectsDuplicateName(t *testing.T) {
	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("a", stubOp{"A"}, nil, 1, nil))

	err := b.AddNode("a", stubOp{"A"}, nil, 1, nil)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestBuilderRejectsUnknownProducer(t *testing.T) {
	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("a", stubOp{"A"}, []graph.NamedInput{{Name: "missing"}}, 1, nil))

	_, err := b.Build()
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestBuilderRejectsOutOfRangeSlot(t *testing.T) {
	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("producer", stubOp{"Producer"}, nil, 1, nil))
	require.NoError(t, b.AddNode("consumer", stubOp{"Consumer"}, []graph.NamedInput{{Name: "producer", Slot: 5}}, 1, nil))

	_, err := b.Build()
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestBuilderDetectsCycle(t *testing.T) {
	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("a", stubOp{"A"}, []graph.NamedInput{{Name: "b"}}, 1, nil))
	require.NoError(t, b.AddNode("b", stubOp{"B"}, []graph.NamedInput{{Name: "a"}}, 1, nil))

	_, err := b.Build()
	assert.ErrorIs(t, err, graph.ErrCyclicGraph)
}

func TestExecutionPlanDeterministicPostOrder(t *testing.T) {
	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("a", stubOp{"A"}, nil, 1, nil))
	require.NoError(t, b.AddNode("b", stubOp{"B"}, nil, 1, nil))
	require.NoError(t, b.AddNode("c", stubOp{"C"}, []graph.NamedInput{{Name: "a"}, {Name: "b"}}, 1, nil))

	g, err := b.Build()
	require.NoError(t, err)

	c, err := g.NodeByName("c")
	require.NoError(t, err)

	plan, err := g.ExecutionPlan(c.ID())
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, c.ID(), plan[len(plan)-1])
}
