package ops

import (
	"fmt"

	"github.com/tensorlace/graphrun/abstract"
	"github.com/tensorlace/graphrun/op"
)

// broadcastShapes computes the NumPy/TF broadcast of two shapes:
// dimensions are aligned at the trailing edge and each pair must be
// equal or one of them must be 1.
func broadcastShapes(a, b []int) ([]int, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	out := make([]int, n)

	for i := 0; i < n; i++ {
		da, db := 1, 1

		if i < len(a) {
			da = a[len(a)-1-i]
		}

		if i < len(b) {
			db = b[len(b)-1-i]
		}

		switch {
		case da == db:
			out[n-1-i] = da
		case da == 1:
			out[n-1-i] = db
		case db == 1:
			out[n-1-i] = da
		default:
			return nil, fmt.Errorf("%w: cannot broadcast %v with %v", op.ErrShapeMismatch, a, b)
		}
	}

	return out, nil
}

// broadcastIndex maps a flat index in the broadcast output shape to a
// flat index into a tensor of the given (possibly shorter, possibly
// size-1-dimensioned) shape.
func broadcastIndex(flat int, outShape, srcShape []int) int {
	rank := len(outShape)
	offset := rank - len(srcShape)

	coords := make([]int, rank)
	rem := flat

	for i := rank - 1; i >= 0; i-- {
		coords[i] = rem % outShape[i]
		rem /= outShape[i]
	}

	srcFlat := 0
	stride := 1

	for i := len(srcShape) - 1; i >= 0; i-- {
		c := coords[i+offset]
		if srcShape[i] == 1 {
			c = 0
		}

		srcFlat += c * stride
		stride *= srcShape[i]
	}

	return srcFlat
}

func broadcastMeetShape(a, b abstract.Shape) (abstract.Shape, error) {
	if a.IsOpen() || b.IsOpen() {
		return abstract.AnyShape(), nil
	}

	sa, err := a.Concretize()
	if err != nil {
		return abstract.AnyShape(), nil
	}

	sb, err := b.Concretize()
	if err != nil {
		return abstract.AnyShape(), nil
	}

	out, err := broadcastShapes(sa, sb)
	if err != nil {
		return abstract.Shape{}, err
	}

	return abstract.FromConcrete(out), nil
}
