// Package state holds per-node evaluation results for a single run of
// a graph and drives their computation, grounded on the teacher's own
// Forward evaluation loop (graph.go's memoised per-node outputs cache),
// generalized here into a standalone type so it can be reused across
// partial and full evaluations of the same graph.
package state

import (
	"fmt"

	"github.com/tensorlace/graphrun/graph"
	"github.com/tensorlace/graphrun/tensor"
)

// State owns the outputs computed so far for one evaluation run of a
// Graph.
type State struct {
	g       *graph.Graph
	outputs map[int][]*tensor.Tensor
}

// New returns an empty State bound to g.
func New(g *graph.Graph) *State {
	return &State{g: g, outputs: make(map[int][]*tensor.Tensor)}
}

// SetValue binds a single node's outputs directly, without running its
// operator. This is how a caller feeds Placeholder inputs into a run.
func (s *State) SetValue(nodeID int, outputs []*tensor.Tensor) error {
	n, err := s.g.NodeByID(nodeID)
	if err != nil {
		return err
	}

	if len(outputs) != n.NumOutputs() {
		return fmt.Errorf("%w: node %q declares %d outputs, got %d", graph.ErrInvalidGraph, n.Name(), n.NumOutputs(), len(outputs))
	}

	s.outputs[nodeID] = outputs

	return nil
}

// Outputs returns the previously computed outputs of nodeID, or false
// if it has none yet.
func (s *State) Outputs(nodeID int) ([]*tensor.Tensor, bool) {
	out, ok := s.outputs[nodeID]

	return out, ok
}

// ComputeOne evaluates a single node's operator against its already
// computed inputs. Every input must already have a value in this
// State; a node whose inputs are incomplete fails with
// ErrPrecondMissing rather than recursing, keeping evaluation order
// under the caller's control (spec §7's non-recursive computation
// primitive).
func (s *State) ComputeOne(nodeID int) ([]*tensor.Tensor, error) {
	n, err := s.g.NodeByID(nodeID)
	if err != nil {
		return nil, err
	}

	if out, ok := s.outputs[nodeID]; ok {
		return out, nil
	}

	if len(n.Inputs()) == 0 && n.Op().OpType() == "Placeholder" {
		return nil, fmt.Errorf("%w: node %q is a placeholder whose value has not been bound", ErrPrecondMissing, n.Name())
	}

	inputs := make([]*tensor.Tensor, len(n.Inputs()))

	for i, ref := range n.Inputs() {
		producerOut, ok := s.outputs[ref.Node]
		if !ok {
			producer, _ := s.g.NodeByID(ref.Node)

			return nil, fmt.Errorf("%w: node %q needs output of %q, not yet computed", ErrPrecondMissing, n.Name(), producer.Name())
		}

		if ref.Slot >= len(producerOut) {
			return nil, fmt.Errorf("%w: node %q references out-of-range output slot %d", ErrPrecondMissing, n.Name(), ref.Slot)
		}

		inputs[i] = producerOut[ref.Slot]
	}

	out, err := n.Op().Eval(inputs)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Name(), err)
	}

	s.outputs[nodeID] = out

	return out, nil
}

// Compute evaluates every node the execution plan names for target, in
// plan order, and returns target's outputs.
func (s *State) Compute(target int) ([]*tensor.Tensor, error) {
	plan, err := s.g.ExecutionPlan(target)
	if err != nil {
		return nil, err
	}

	var out []*tensor.Tensor

	for _, id := range plan {
		out, err = s.ComputeOne(id)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
