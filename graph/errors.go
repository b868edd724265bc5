package graph

import "errors"

// ErrUnknownNode is returned when a lookup names a node id or name the
// graph does not contain (spec §7).
var ErrUnknownNode = errors.New("graph: unknown node")

// ErrInvalidGraph is returned when a graph fails structural validation:
// a duplicate name, an input naming a producer that was never added, an
// out-of-range output slot, or a node with no bound operator. Inputs may
// name producers added later; resolution happens in Build.
var ErrInvalidGraph = errors.New("graph: invalid graph")

// ErrCyclicGraph is returned by Builder.Build when the resolved inputs
// form a cycle (a node naming itself as an input included).
var ErrCyclicGraph = errors.New("graph: cyclic graph")
