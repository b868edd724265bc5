package analyser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorlace/graphrun/analyser"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/graph"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/ops"
	"github.com/tensorlace/graphrun/registry"
)

func newRegistry() *registry.Registry {
	reg := registry.New()
	ops.RegisterAll(reg)

	return reg
}

func TestAnalyseConvergesOnIdentityChain(t *testing.T) {
	reg := newRegistry()

	ph, err := reg.Build("Placeholder", map[string]interface{}{"dtype": dtype.F32})
	require.NoError(t, err)

	id1, err := reg.Build("Identity", nil)
	require.NoError(t, err)

	id2, err := reg.Build("Identity", nil)
	require.NoError(t, err)

	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("in", ph, nil, 1, nil))
	require.NoError(t, b.AddNode("a", id1, []graph.NamedInput{{Name: "in"}}, 1, nil))
	require.NoError(t, b.AddNode("b", id2, []graph.NamedInput{{Name: "a"}}, 1, nil))

	g, err := b.Build()
	require.NoError(t, err)

	table, err := analyser.Analyse(g)
	require.NoError(t, err)
	assert.Len(t, table, 3)
}

func TestAnalysePropagatesPlaceholderType(t *testing.T) {
	reg := newRegistry()

	ph, err := reg.Build("Placeholder", map[string]interface{}{"dtype": dtype.F32})
	require.NoError(t, err)

	id, err := reg.Build("Identity", nil)
	require.NoError(t, err)

	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("in", ph, nil, 1, nil))
	require.NoError(t, b.AddNode("out", id, []graph.NamedInput{{Name: "in"}}, 1, nil))

	g, err := b.Build()
	require.NoError(t, err)

	out, err := g.NodeByName("out")
	require.NoError(t, err)

	table, err := analyser.Analyse(g)
	require.NoError(t, err)
	assert.True(t, table[out.ID()][0].Type.IsKnown())
	assert.Equal(t, dtype.F32, table[out.ID()][0].Type.Value())
}

// Cast legitimately changes its output's type away from its input's;
// Cast.InferBackward reports its input as unconstrained rather than
// asserting its own type backward, so this never reads as a conflict.
func TestAnalyseCastChangesTypeWithoutConflict(t *testing.T) {
	reg := newRegistry()

	a, err := reg.Build("Placeholder", map[string]interface{}{"dtype": dtype.F32})
	require.NoError(t, err)

	c, err := reg.Build("Cast", map[string]interface{}{"DstT": dtype.I32})
	require.NoError(t, err)

	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("in", a, nil, 1, nil))
	require.NoError(t, b.AddNode("cast", c, []graph.NamedInput{{Name: "in"}}, 1, nil))

	g, err := b.Build()
	require.NoError(t, err)

	_, err = analyser.Analyse(g)
	assert.NoError(t, err)
}

// Reshape.InferBackward unconditionally asserts an i32 type onto its
// dims input; feeding it an i8 placeholder forces a genuine conflict
// when that assertion is met against the placeholder's own declared
// type.
func TestAnalyseDetectsBackwardTypeConflict(t *testing.T) {
	reg := newRegistry()

	data, err := reg.Build("Placeholder", map[string]interface{}{"dtype": dtype.F32})
	require.NoError(t, err)

	dims, err := reg.Build("Placeholder", map[string]interface{}{"dtype": dtype.I8})
	require.NoError(t, err)

	reshape, err := reg.Build("Reshape", nil)
	require.NoError(t, err)

	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("data", data, nil, 1, nil))
	require.NoError(t, b.AddNode("dims", dims, nil, 1, nil))
	require.NoError(t, b.AddNode("out", reshape, []graph.NamedInput{{Name: "data"}, {Name: "dims"}}, 1, nil))

	g, err := b.Build()
	require.NoError(t, err)

	_, err = analyser.Analyse(g)
	assert.ErrorIs(t, err, op.ErrInferenceConflict)
}
