package grid

import (
	"fmt"

	apperrors "github.com/xtxerr/amrcarve/internal/errors"
)

// SetField attaches a cell-centered scalar field to the node. The array
// shape must match ActiveDims. The node takes ownership of the array.
func (n *Node) SetField(name string, a *Array3) error {
	if a.Dims != n.ActiveDims {
		return fmt.Errorf("grid: field %q dims %v want %v", name, a.Dims, n.ActiveDims)
	}
	n.fields[name] = a
	return nil
}

// Field returns the raw cell-centered field array.
func (n *Node) Field(name string) (*Array3, error) {
	a, ok := n.fields[name]
	if !ok {
		return nil, apperrors.NewFieldNotFound(name)
	}
	return a, nil
}

// FieldExtrema returns the minimum and maximum of the raw cell-centered
// field. This is the cheap pre-check used for the threshold cull, done
// before any vertex interpolation.
func (n *Node) FieldExtrema(name string) (min, max float64, err error) {
	a, err := n.Field(name)
	if err != nil {
		return 0, 0, err
	}
	min, max = a.MinMax()
	return min, max, nil
}

// VertexCenteredField interpolates the cell-centered field to cell corners,
// returning an array with one more sample per axis than ActiveDims.
//
// With smoothed set, each vertex takes the mean of its adjacent cells (up to
// eight, fewer at grid boundaries where out-of-range neighbors are clamped
// away). Without it, each vertex takes the value of the cell it is the lower
// corner of, clamped at the upper faces; cheap, but discontinuous across
// cell faces.
//
// The returned array is freshly allocated on every call and owned by the
// caller.
func (n *Node) VertexCenteredField(name string, smoothed bool) (*Array3, error) {
	a, err := n.Field(name)
	if err != nil {
		return nil, err
	}

	vdims := [3]int{n.ActiveDims[0] + 1, n.ActiveDims[1] + 1, n.ActiveDims[2] + 1}
	out := NewArray3(vdims)

	if !smoothed {
		for x := 0; x < vdims[0]; x++ {
			cx := clamp(x, n.ActiveDims[0]-1)
			for y := 0; y < vdims[1]; y++ {
				cy := clamp(y, n.ActiveDims[1]-1)
				for z := 0; z < vdims[2]; z++ {
					out.Set(x, y, z, a.At(cx, cy, clamp(z, n.ActiveDims[2]-1)))
				}
			}
		}
		return out, nil
	}

	for x := 0; x < vdims[0]; x++ {
		x0, x1 := neighborRange(x, n.ActiveDims[0])
		for y := 0; y < vdims[1]; y++ {
			y0, y1 := neighborRange(y, n.ActiveDims[1])
			for z := 0; z < vdims[2]; z++ {
				z0, z1 := neighborRange(z, n.ActiveDims[2])

				sum := 0.0
				cnt := 0
				for cx := x0; cx <= x1; cx++ {
					for cy := y0; cy <= y1; cy++ {
						for cz := z0; cz <= z1; cz++ {
							sum += a.At(cx, cy, cz)
							cnt++
						}
					}
				}
				out.Set(x, y, z, sum/float64(cnt))
			}
		}
	}
	return out, nil
}

// neighborRange returns the inclusive cell-index range adjacent to vertex v
// along an axis with dim cells.
func neighborRange(v, dim int) (lo, hi int) {
	lo, hi = v-1, v
	if lo < 0 {
		lo = 0
	}
	if hi > dim-1 {
		hi = dim - 1
	}
	return lo, hi
}

func clamp(v, max int) int {
	if v > max {
		return max
	}
	return v
}
