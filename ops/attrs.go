// Package ops implements the concrete operator library: shape
// manipulation, arithmetic, and neural-network primitives (spec §4.2).
// Each operator is grounded file-by-file on
// original_source/src/ops/array/mod.rs and, where the original source
// does not cover it (pooling, arithmetic, cast), on the contract pinned
// down by spec.md and the pooling conformance test
// original_source/conform/tests/ops_nn_pools.rs.
package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/dtype"
	"github.com/tensorlace/graphrun/op"
	"github.com/tensorlace/graphrun/tensor"
)

// intAttr fetches a required integer attribute.
func intAttr(attrs map[string]interface{}, name string) (int, error) {
	v, ok := attrs[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing attribute %q", op.ErrUnsupportedAttribute, name)
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: attribute %q is not an integer (%T)", op.ErrUnsupportedAttribute, name, v)
	}
}

// intListAttr fetches a required integer-list attribute.
func intListAttr(attrs map[string]interface{}, name string) ([]int, error) {
	v, ok := attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing attribute %q", op.ErrUnsupportedAttribute, name)
	}

	switch list := v.(type) {
	case []int:
		return list, nil
	case []int64:
		out := make([]int, len(list))
		for i, n := range list {
			out[i] = int(n)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: attribute %q is not an integer list (%T)", op.ErrUnsupportedAttribute, name, v)
	}
}

// stringAttr fetches a required string attribute.
func stringAttr(attrs map[string]interface{}, name string) (string, error) {
	v, ok := attrs[name]
	if !ok {
		return "", fmt.Errorf("%w: missing attribute %q", op.ErrUnsupportedAttribute, name)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: attribute %q is not a string (%T)", op.ErrUnsupportedAttribute, name, v)
	}

	return s, nil
}

// tensorAttr fetches a required tensor-valued attribute (used by Const).
func tensorAttr(attrs map[string]interface{}, name string) (*tensor.Tensor, error) {
	v, ok := attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing attribute %q", op.ErrUnsupportedAttribute, name)
	}

	t, ok := v.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("%w: attribute %q is not a tensor (%T)", op.ErrUnsupportedAttribute, name, v)
	}

	return t, nil
}

// dtypeAttr fetches a required data-type attribute.
func dtypeAttr(attrs map[string]interface{}, name string) (dtype.Type, error) {
	v, ok := attrs[name]
	if !ok {
		return dtype.Invalid, fmt.Errorf("%w: missing attribute %q", op.ErrUnsupportedAttribute, name)
	}

	dt, ok := v.(dtype.Type)
	if !ok {
		return dtype.Invalid, fmt.Errorf("%w: attribute %q is not a dtype (%T)", op.ErrUnsupportedAttribute, name, v)
	}

	return dt, nil
}

func requireArity(got, want int, what string) error {
	if got != want {
		return fmt.Errorf("%w: %s expects %d, got %d", op.ErrWrongArity, what, want, got)
	}

	return nil
}

// tryConcreteForward mirrors original_source/src/ops/mod.rs's
// try_infer_forward_concrete! macro: when every input descriptor
// already carries a concrete value, run Eval eagerly and report the
// exact output descriptors instead of falling through to shape-only
// inference. ok is false when any input lacks a concrete value, in
// which case the caller should continue with its own shape-only
// inference rather than failing outright.
func tryConcreteForward(o op.Op, inputs []abstract.Descriptor) ([]abstract.Descriptor, bool, error) {
	concrete := make([]*tensor.Tensor, len(inputs))

	for i, d := range inputs {
		t, err := d.Value.Concretize()
		if err != nil {
			return nil, false, nil
		}

		concrete[i] = t
	}

	outputs, err := o.Eval(concrete)
	if err != nil {
		return nil, true, err
	}

	descs := make([]abstract.Descriptor, len(outputs))
	for i, t := range outputs {
		descs[i] = abstract.FromTensor(t)
	}

	return descs, true, nil
}

