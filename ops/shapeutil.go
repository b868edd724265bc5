package ops

import (
	"fmt"
	"sort"

	"github.com/tensorlace/graphrun/op"
)

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return n
}

// trueDims resolves a Reshape dims vector that may contain a single -1
// placeholder, grounded on Reshape::true_dims in
// original_source/src/ops/array/mod.rs.
func trueDims(dims []int32, totalLen int) ([]int, error) {
	prod := 1
	hasNeg := false

	for _, d := range dims {
		if d == -1 {
			if hasNeg {
				return nil, fmt.Errorf("%w: reshape dims has more than one -1", op.ErrUnsupportedAttribute)
			}

			hasNeg = true

			continue
		}

		prod *= int(d)
	}

	out := make([]int, len(dims))

	for i, d := range dims {
		if d == -1 {
			if prod == 0 {
				return nil, fmt.Errorf("%w: cannot infer -1 dimension against zero product", op.ErrShapeMismatch)
			}

			out[i] = totalLen / prod
		} else {
			out[i] = int(d)
		}
	}

	return out, nil
}

func containsNeg(dims []int32) bool {
	for _, d := range dims {
		if d < 0 {
			return true
		}
	}

	return false
}

// insertAt inserts val at index idx of shape, shifting later elements
// right, as ExpandDims does one axis at a time.
func insertAt(shape []int, idx, val int) ([]int, error) {
	if idx < 0 || idx > len(shape) {
		return nil, fmt.Errorf("%w: expand_dims axis %d out of range for rank %d", op.ErrShapeMismatch, idx, len(shape))
	}

	out := make([]int, 0, len(shape)+1)
	out = append(out, shape[:idx]...)
	out = append(out, val)
	out = append(out, shape[idx:]...)

	return out, nil
}

// removeAt deletes the dimension at idx, as Squeeze does for each
// configured axis.
func removeAt(shape []int, idx int) ([]int, error) {
	if idx < 0 || idx >= len(shape) {
		return nil, fmt.Errorf("%w: squeeze axis %d out of range for rank %d", op.ErrShapeMismatch, idx, len(shape))
	}

	out := make([]int, 0, len(shape)-1)
	out = append(out, shape[:idx]...)
	out = append(out, shape[idx+1:]...)

	return out, nil
}

func sortedDescendingInts(dims []int) []int {
	out := append([]int(nil), dims...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))

	return out
}

func sortedAscendingInts(dims []int) []int {
	out := append([]int(nil), dims...)
	sort.Ints(out)

	return out
}
