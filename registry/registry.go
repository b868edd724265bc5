// Package registry maps an operator-name string, as found in a
// serialized graph node, to a factory that builds an op.Op from that
// node's attributes. Unknown names do not fail graph loading: they
// build an Unimplemented op whose Eval fails at evaluation time (spec
// §4.3), grounded on original_source/src/ops/mod.rs's OpBuilder.
package registry

import (
	"github.com/tensorlace/graphrun/op"
)

// Factory builds an operator instance from a node's raw attribute map.
type Factory func(attrs map[string]interface{}) (op.Op, error)

// Registry is a name -> Factory table.
type Registry struct {
	factories map[string]Factory
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, overwriting any previous entry.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Build constructs an operator for the named node type. Unknown names
// produce an Unimplemented op rather than an error.
func (r *Registry) Build(opType string, attrs map[string]interface{}) (op.Op, error) {
	factory, ok := r.factories[opType]
	if !ok {
		return &Unimplemented{name: opType}, nil
	}

	return factory(attrs)
}

// Unimplemented is built for any operator name the registry does not
// recognize. Its presence does not block evaluation of subgraphs that
// never reach it.
type Unimplemented struct {
	name string
}

// OpType returns the unrecognized name.
func (u *Unimplemented) OpType() string { return u.name }
