// Package partition decomposes AMR grids into flat, non-overlapping
// rectangular bricks suitable for independent ray traversal by a volume
// renderer.
//
// Each brick carries a vertex-centered sample array plus its world-space
// bounding box, with the invariant that no brick region is covered by a
// finer child grid: a grid's own pass emits only its uncovered cells, and
// finer levels contribute their own bricks independently.
package partition

import (
	"sort"

	apperrors "github.com/xtxerr/amrcarve/internal/errors"
	"github.com/xtxerr/amrcarve/internal/grid"
)

// Source is the read-only view of one grid consumed by the partitioner.
// grid.Node satisfies it; tests substitute spies.
type Source interface {
	Dims() [3]int
	Bounds() (left, right [3]float64)
	CellSize() [3]float64
	ChildCount() int
	ChildFootprints() []grid.Footprint
	ChildIndexMask() *grid.Mask3
	VertexCenteredField(name string, smoothed bool) (*grid.Array3, error)
	FieldExtrema(name string) (min, max float64, err error)
}

// Range is a closed threshold band [Low, High]. A grid whose field range
// cannot intersect the band is culled before vertex interpolation.
type Range struct {
	Low  float64
	High float64
}

// Excludes reports whether a field spanning [min, max] lies entirely
// outside the band.
func (r Range) Excludes(min, max float64) bool {
	return max < r.Low || min > r.High
}

// Brick is one partition: an axis-aligned box of cells uniformly uncovered
// by any child, with an owned vertex-centered sample array.
//
// Dims are CELL counts; Data is vertex-shaped, one more sample per axis
// (Data.Dims[i] == Dims[i]+1). The same convention holds for whole-leaf
// bricks and for sub-boxes of refined grids.
type Brick struct {
	Data      *grid.Array3
	LeftEdge  [3]float64
	RightEdge [3]float64
	Dims      [3]int
}

// VertexDims returns the per-axis vertex sample count.
func (b *Brick) VertexDims() [3]int {
	return [3]int{b.Dims[0] + 1, b.Dims[1] + 1, b.Dims[2] + 1}
}

// Validate checks the vertex/cell shape invariant.
func (b *Brick) Validate() error {
	if b.Data == nil {
		return apperrors.NewFormat("brick has no data")
	}
	for i := 0; i < 3; i++ {
		if b.Dims[i] <= 0 {
			return apperrors.Wrapf(apperrors.ErrBadDims, "dims %v", b.Dims)
		}
		if b.Data.Dims[i] != b.Dims[i]+1 {
			return apperrors.NewFormat("brick data not vertex-shaped")
		}
	}
	return nil
}

// Grid decomposes one grid into bricks.
//
// When thr is non-nil and the grid's raw field range lies entirely outside
// it, Grid returns skipped = true without touching the vertex interpolation;
// callers that track progress can distinguish this from a grid that was
// partitioned into zero bricks (fully covered by children), which returns an
// empty slice and skipped = false.
//
// applyLog replaces every interpolated sample with its base-10 logarithm.
// Any NaN in the resulting samples is a caller contract violation and
// surfaces as a domain error.
func Grid(src Source, field string, applyLog bool, thr *Range) (bricks []*Brick, skipped bool, err error) {
	if thr != nil {
		min, max, err := src.FieldExtrema(field)
		if err != nil {
			return nil, false, err
		}
		if thr.Excludes(min, max) {
			return nil, true, nil
		}
	}

	data, err := src.VertexCenteredField(field, true)
	if err != nil {
		return nil, false, err
	}
	if applyLog {
		if nan := data.Log10(); nan > 0 {
			return nil, false, apperrors.NewFieldNaN(field, nan)
		}
	} else if nan := data.CountNaN(); nan > 0 {
		return nil, false, apperrors.NewFieldNaN(field, nan)
	}

	dims := src.Dims()
	left, _ := src.Bounds()
	dds := src.CellSize()

	if src.ChildCount() == 0 {
		return []*Brick{wholeBrick(src, data)}, false, nil
	}

	// One sorted split-plane list per axis, seeded with the grid bounds and
	// every child's projected start/end. Duplicates stay; they produce
	// zero-thickness intervals that fall out below.
	var verts [3][]int
	for a := 0; a < 3; a++ {
		verts[a] = []int{0, dims[a]}
	}
	for _, fp := range src.ChildFootprints() {
		for a := 0; a < 3; a++ {
			verts[a] = append(verts[a], fp.Start[a], fp.End[a])
		}
	}
	for a := 0; a < 3; a++ {
		sort.Ints(verts[a])
	}

	cim := src.ChildIndexMask()

	for ix := 0; ix+1 < len(verts[0]); ix++ {
		xs, xe := verts[0][ix], verts[0][ix+1]
		if xs >= xe {
			continue
		}
		for iy := 0; iy+1 < len(verts[1]); iy++ {
			ys, ye := verts[1][iy], verts[1][iy+1]
			if ys >= ye {
				continue
			}
			for iz := 0; iz+1 < len(verts[2]); iz++ {
				zs, ze := verts[2][iz], verts[2][iz+1]
				if zs >= ze {
					continue
				}

				value, distinct := cim.Uniform([3]int{xs, ys, zs}, [3]int{xe, ye, ze})
				if distinct == 0 {
					continue // box outside the mask
				}
				if distinct > 1 {
					continue // straddles a coverage boundary: dropped, not subdivided
				}
				if value >= 0 {
					continue // covered by one child; its own pass emits this region
				}

				sub, err := data.SubCopy(
					[3]int{xs, ys, zs},
					[3]int{xe + 1, ye + 1, ze + 1}, // vertex-inclusive
				)
				if err != nil {
					return nil, false, err
				}

				b := &Brick{
					Data: sub,
					Dims: [3]int{xe - xs, ye - ys, ze - zs},
				}
				for a, s := range [3]int{xs, ys, zs} {
					b.LeftEdge[a] = left[a] + float64(s)*dds[a]
					b.RightEdge[a] = b.LeftEdge[a] + float64(b.Dims[a])*dds[a]
				}
				bricks = append(bricks, b)
			}
		}
	}

	return bricks, false, nil
}

// wholeBrick wraps a childless grid's full vertex array as a single brick.
// The array is already an owned copy produced by the interpolation.
func wholeBrick(src Source, data *grid.Array3) *Brick {
	left, right := src.Bounds()
	return &Brick{
		Data:      data,
		LeftEdge:  left,
		RightEdge: right,
		Dims:      src.Dims(),
	}
}
