package graph

import (
	"fmt"

	"github.com/tensorlace/graphrun/op"
)

// NamedInput names an input by the producer's node name rather than its
// id, since a serialized graph's node list is not required to be in
// topological order (a node may reference a producer defined later in
// the file). Builder resolves these to concrete Input references once
// every node has been added.
type NamedInput struct {
	Name string
	Slot int
}

type pendingNode struct {
	name       string
	op         op.Op
	inputs     []NamedInput
	attrs      map[string]interface{}
	numOutputs int
}

// Builder assembles a Graph from nodes added in any order, resolving
// named input references and validating structure once every node is
// known, in the style of the teacher's own graph Builder generalized
// off its compile-time Node[T] to this engine's dynamic op.Op.
type Builder struct {
	pending []pendingNode
	byName  map[string]bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byName: make(map[string]bool)}
}

// AddNode stages a node bound to o, wired to the named inputs, with the
// given declared output arity and raw attributes. Returns an error
// immediately only for a duplicate name; input resolution happens in
// Build.
func (b *Builder) AddNode(name string, o op.Op, inputs []NamedInput, numOutputs int, attrs map[string]interface{}) error {
	if b.byName[name] {
		return fmt.Errorf("%w: duplicate node name %q", ErrInvalidGraph, name)
	}

	b.byName[name] = true
	b.pending = append(b.pending, pendingNode{
		name:       name,
		op:         o,
		inputs:     append([]NamedInput(nil), inputs...),
		attrs:      attrs,
		numOutputs: numOutputs,
	})

	return nil
}

// Build resolves every named input to a concrete node id and output
// slot, validates the result, and detects cycles among the resolved
// inputs.
func (b *Builder) Build() (*Graph, error) {
	byName := make(map[string]int, len(b.pending))
	for i, p := range b.pending {
		byName[p.name] = i
	}

	nodes := make([]*Node, len(b.pending))

	for i, p := range b.pending {
		resolved := make([]Input, len(p.inputs))

		for j, in := range p.inputs {
			producerID, ok := byName[in.Name]
			if !ok {
				return nil, fmt.Errorf("%w: node %q references unknown producer %q", ErrInvalidGraph, p.name, in.Name)
			}

			producer := b.pending[producerID]
			if in.Slot < 0 || in.Slot >= producer.numOutputs {
				return nil, fmt.Errorf("%w: node %q references out-of-range output slot %d of %q", ErrInvalidGraph, p.name, in.Slot, in.Name)
			}

			resolved[j] = Input{Node: producerID, Slot: in.Slot}
		}

		if p.op == nil {
			return nil, fmt.Errorf("%w: node %q has no bound operator", ErrInvalidGraph, p.name)
		}

		nodes[i] = &Node{
			id:         i,
			name:       p.name,
			op:         p.op,
			inputs:     resolved,
			attrs:      p.attrs,
			numOutputs: p.numOutputs,
		}
	}

	g := &Graph{nodes: nodes, byName: byName}

	if err := detectCycles(g); err != nil {
		return nil, err
	}

	return g, nil
}
