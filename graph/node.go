// Package graph implements the dataflow DAG itself: nodes wrapping an
// operator instance plus its input wiring, and a Graph that indexes
// them by id and name and computes deterministic execution plans.
// Grounded in structure on the teacher's own graph package (a node id
// plus operator plus input references), generalized from the teacher's
// compile-time Node[T]/Graph[T] to the dynamically-typed op.Op this
// engine's operators implement.
package graph

import "github.com/tensorlace/graphrun/op"

// Input names one producer's output: the id of the node that produced
// it and which of that node's output slots to take.
type Input struct {
	Node int
	Slot int
}

// Node is one vertex of the computation graph: a stable integer id, a
// unique name, the operator instance bound to it, its ordered input
// references, the node's raw attributes (kept for diagnostics and
// re-serialization), and its declared output arity. A Node is immutable
// once constructed.
type Node struct {
	id         int
	name       string
	op         op.Op
	inputs     []Input
	attrs      map[string]interface{}
	numOutputs int
}

// ID returns the node's stable integer id.
func (n *Node) ID() int { return n.id }

// Name returns the node's unique name.
func (n *Node) Name() string { return n.name }

// Op returns the node's bound operator instance.
func (n *Node) Op() op.Op { return n.op }

// Inputs returns the node's ordered input references. Callers must not
// mutate the returned slice.
func (n *Node) Inputs() []Input { return n.inputs }

// Attrs returns the node's raw attribute map, as loaded from its
// serialized definition. Callers must not mutate the returned map.
func (n *Node) Attrs() map[string]interface{} { return n.attrs }

// NumOutputs returns the node's declared output arity.
func (n *Node) NumOutputs() int { return n.numOutputs }
