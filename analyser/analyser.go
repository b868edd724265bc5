// Package analyser implements the static shape/type/value abstract
// interpretation pass: a fixed-point loop that alternates forward and
// backward inference over every node's operator, refining each node's
// output descriptors via Meet until nothing changes. The descriptor
// lattice is grounded on original_source/src/analyser's ATensor types;
// the alternating multi-round loop is this package's own design, run as
// a reusable pass over any Graph.
package analyser

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/graph"
	"github.com/tensorlace/graphrun/op"
)

// Table maps a node id to its current output descriptors, one per
// declared output slot.
type Table map[int][]abstract.Descriptor

func newTable(g *graph.Graph) Table {
	t := make(Table, len(g.Nodes()))

	for _, n := range g.Nodes() {
		descs := make([]abstract.Descriptor, n.NumOutputs())
		for i := range descs {
			descs[i] = abstract.Any()
		}

		t[n.ID()] = descs
	}

	return t
}

func (t Table) inputDescriptors(n *graph.Node) []abstract.Descriptor {
	out := make([]abstract.Descriptor, len(n.Inputs()))
	for i, ref := range n.Inputs() {
		out[i] = t[ref.Node][ref.Slot]
	}

	return out
}

// meetInto updates descs[slot] to its meet with candidate, reporting
// whether the stored value changed.
func meetInto(descs []abstract.Descriptor, slot int, candidate abstract.Descriptor) (bool, error) {
	merged, err := abstract.Meet(descs[slot], candidate)
	if err != nil {
		return false, fmt.Errorf("%w: %v", op.ErrInferenceConflict, err)
	}

	if descriptorsEqual(descs[slot], merged) {
		return false, nil
	}

	descs[slot] = merged

	return true, nil
}

func descriptorsEqual(a, b abstract.Descriptor) bool {
	if a.Type.IsKnown() != b.Type.IsKnown() {
		return false
	}

	if a.Type.IsKnown() && a.Type.Value() != b.Type.Value() {
		return false
	}

	if a.Shape.IsOpen() != b.Shape.IsOpen() {
		return false
	}

	ad, bd := a.Shape.Dims(), b.Shape.Dims()
	if len(ad) != len(bd) {
		return false
	}

	for i := range ad {
		if ad[i].IsKnown() != bd[i].IsKnown() {
			return false
		}

		if ad[i].IsKnown() && ad[i].Value() != bd[i].Value() {
			return false
		}
	}

	return a.Value.IsKnown() == b.Value.IsKnown()
}

// maxRounds bounds the fixed-point loop as a safety net against a
// non-monotonic operator; a sound, monotonic set of operators always
// converges well before this.
func maxRounds(nodeCount int) int {
	return nodeCount*4 + 16
}

// Analyse runs the forward/backward fixed-point loop over every node of
// g and returns each node's final output descriptor table.
func Analyse(g *graph.Graph) (Table, error) {
	table := newTable(g)
	nodes := g.Nodes()

	for round := 0; round < maxRounds(len(nodes)); round++ {
		changed := false

		for _, n := range nodes {
			inputs := table.inputDescriptors(n)

			outputs, err := n.Op().InferForward(inputs)
			if err != nil {
				return nil, fmt.Errorf("node %q forward: %w", n.Name(), err)
			}

			for slot := range outputs {
				didChange, err := meetInto(table[n.ID()], slot, outputs[slot])
				if err != nil {
					return nil, fmt.Errorf("node %q forward: %w", n.Name(), err)
				}

				changed = changed || didChange
			}
		}

		for _, n := range nodes {
			if len(n.Inputs()) == 0 {
				continue
			}

			revised, err := n.Op().InferBackward(table[n.ID()])
			if err != nil {
				continue
			}

			for i, ref := range n.Inputs() {
				if i >= len(revised) {
					break
				}

				didChange, err := meetInto(table[ref.Node], ref.Slot, revised[i])
				if err != nil {
					return nil, fmt.Errorf("node %q backward: %w", n.Name(), err)
				}

				changed = changed || didChange
			}
		}

		if !changed {
			return table, nil
		}
	}

	return nil, ErrDidNotConverge
}
