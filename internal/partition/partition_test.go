package partition

import (
	"math"
	"testing"

	apperrors "github.com/xtxerr/amrcarve/internal/errors"
	"github.com/xtxerr/amrcarve/internal/grid"
)

// spySource is a hand-built Source that counts interpolation calls, so tests
// can assert the threshold cull short-circuits before any vertex work.
type spySource struct {
	dims        [3]int
	left, right [3]float64
	footprints  []grid.Footprint
	mask        *grid.Mask3
	extrema     [2]float64
	vertex      *grid.Array3

	interpCalls  int
	extremaCalls int
}

func (s *spySource) Dims() [3]int { return s.dims }

func (s *spySource) Bounds() ([3]float64, [3]float64) { return s.left, s.right }

func (s *spySource) CellSize() [3]float64 {
	var dds [3]float64
	for i := 0; i < 3; i++ {
		dds[i] = (s.right[i] - s.left[i]) / float64(s.dims[i])
	}
	return dds
}

func (s *spySource) ChildCount() int                   { return len(s.footprints) }
func (s *spySource) ChildFootprints() []grid.Footprint { return s.footprints }
func (s *spySource) ChildIndexMask() *grid.Mask3       { return s.mask }

func (s *spySource) FieldExtrema(string) (float64, float64, error) {
	s.extremaCalls++
	return s.extrema[0], s.extrema[1], nil
}

func (s *spySource) VertexCenteredField(string, bool) (*grid.Array3, error) {
	s.interpCalls++
	return s.vertex.Copy(), nil
}

func constVertex(dims [3]int, v float64) *grid.Array3 {
	a := grid.NewArray3([3]int{dims[0] + 1, dims[1] + 1, dims[2] + 1})
	a.Fill(v)
	return a
}

func TestThresholdCullSkipsInterpolation(t *testing.T) {
	src := &spySource{
		dims:    [3]int{2, 2, 2},
		right:   [3]float64{1, 1, 1},
		extrema: [2]float64{1, 2},
		vertex:  constVertex([3]int{2, 2, 2}, 1),
	}

	bricks, skipped, err := Grid(src, "Density", false, &Range{Low: 5, High: 10})
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if !skipped {
		t.Fatal("expected skipped = true for an out-of-band grid")
	}
	if len(bricks) != 0 {
		t.Fatalf("culled grid produced %d bricks", len(bricks))
	}
	if src.interpCalls != 0 {
		t.Fatalf("cull must precede interpolation; got %d interp calls", src.interpCalls)
	}
	if src.extremaCalls != 1 {
		t.Fatalf("extremaCalls = %d, want 1", src.extremaCalls)
	}
}

func TestNilThresholdNeverCulls(t *testing.T) {
	src := &spySource{
		dims:    [3]int{2, 2, 2},
		right:   [3]float64{1, 1, 1},
		extrema: [2]float64{1e308, 1e308},
		vertex:  constVertex([3]int{2, 2, 2}, 1),
	}

	bricks, skipped, err := Grid(src, "Density", false, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if skipped || len(bricks) != 1 {
		t.Fatalf("got skipped=%v bricks=%d, want one brick", skipped, len(bricks))
	}
	if src.extremaCalls != 0 {
		t.Fatal("no threshold means no extrema scan")
	}
}

func TestLeafWholeBrick(t *testing.T) {
	n := grid.UniformLeaf([3]int{3, 4, 5}, [3]float64{0, 0, 0}, [3]float64{3, 4, 5}, "Density", 2.0)

	bricks, skipped, err := Grid(n, "Density", false, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if skipped {
		t.Fatal("leaf grid must not be skipped")
	}
	if len(bricks) != 1 {
		t.Fatalf("leaf produced %d bricks, want 1", len(bricks))
	}

	b := bricks[0]
	if b.Dims != [3]int{3, 4, 5} {
		t.Fatalf("brick dims %v, want (3,4,5)", b.Dims)
	}
	if b.Data.Len() != 4*5*6 {
		t.Fatalf("brick data length %d, want 120", b.Data.Len())
	}
	if b.LeftEdge != [3]float64{0, 0, 0} || b.RightEdge != [3]float64{3, 4, 5} {
		t.Fatalf("brick edges [%v, %v], want grid bounds", b.LeftEdge, b.RightEdge)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for i, v := range b.Data.Values {
		if v != 2.0 {
			t.Fatalf("sample %d: got %v, want 2", i, v)
		}
	}
}

func TestLogTransformApplied(t *testing.T) {
	n := grid.UniformLeaf([3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", 100.0)

	bricks, _, err := Grid(n, "Density", true, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	for i, v := range bricks[0].Data.Values {
		if v != 2.0 {
			t.Fatalf("sample %d: got %v, want log10(100) = 2", i, v)
		}
	}
}

func TestLogOfNonPositiveIsDomainError(t *testing.T) {
	n := grid.UniformLeaf([3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", -1.0)

	_, _, err := Grid(n, "Density", true, nil)
	if err == nil {
		t.Fatal("expected domain error for log10 of negative samples")
	}
	if !apperrors.IsDomain(err) {
		t.Fatalf("got %v, want a domain error", err)
	}
	if !apperrors.Is(err, apperrors.ErrFieldNaN) {
		t.Fatalf("got %v, want ErrFieldNaN", err)
	}
}

func TestNaNInputIsDomainError(t *testing.T) {
	n := grid.UniformLeaf([3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", 1.0)
	a, _ := n.Field("Density")
	a.Set(0, 0, 0, math.NaN())

	_, _, err := Grid(n, "Density", false, nil)
	if !apperrors.IsDomain(err) {
		t.Fatalf("got %v, want a domain error", err)
	}
}

func TestCoverageExclusivity(t *testing.T) {
	root := grid.UniformLeaf([3]int{4, 4, 4}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", 1.0)
	if _, err := root.RefineBox([3]int{1, 1, 1}, [3]int{3, 3, 3}); err != nil {
		t.Fatalf("RefineBox: %v", err)
	}

	bricks, skipped, err := Grid(root, "Density", false, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if skipped {
		t.Fatal("refined root must not be skipped")
	}
	// 3 intervals per axis around the child footprint, minus the child box.
	if len(bricks) != 26 {
		t.Fatalf("got %d bricks, want 26", len(bricks))
	}

	dds := root.CellSize()
	covered := grid.NewMask3([3]int{4, 4, 4})
	cells := 0
	for bi, b := range bricks {
		if err := b.Validate(); err != nil {
			t.Fatalf("brick %d invalid: %v", bi, err)
		}
		var lo, hi [3]int
		for a := 0; a < 3; a++ {
			lo[a] = int(math.Round(b.LeftEdge[a] / dds[a]))
			hi[a] = lo[a] + b.Dims[a]
			want := b.LeftEdge[a] + float64(b.Dims[a])*dds[a]
			if math.Abs(b.RightEdge[a]-want) > 1e-12 {
				t.Fatalf("brick %d axis %d: right edge %v, want %v", bi, a, b.RightEdge[a], want)
			}
		}
		for x := lo[0]; x < hi[0]; x++ {
			for y := lo[1]; y < hi[1]; y++ {
				for z := lo[2]; z < hi[2]; z++ {
					if covered.At(x, y, z) != grid.Uncovered {
						t.Fatalf("cell (%d,%d,%d) claimed by two bricks", x, y, z)
					}
					covered.Set(x, y, z, int32(bi))
					cells++
				}
			}
		}
	}

	// Everything except the 2x2x2 refined core, exactly once.
	if cells != 64-8 {
		t.Fatalf("bricks cover %d cells, want 56", cells)
	}
	for x := 1; x < 3; x++ {
		for y := 1; y < 3; y++ {
			for z := 1; z < 3; z++ {
				if covered.At(x, y, z) != grid.Uncovered {
					t.Fatalf("refined cell (%d,%d,%d) emitted by the parent pass", x, y, z)
				}
			}
		}
	}
}

func TestFullyCoveredGridEmitsNothing(t *testing.T) {
	root := grid.UniformLeaf([3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", 1.0)
	if _, err := root.RefineBox([3]int{0, 0, 0}, [3]int{2, 2, 2}); err != nil {
		t.Fatalf("RefineBox: %v", err)
	}

	bricks, skipped, err := Grid(root, "Density", false, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if skipped {
		t.Fatal("fully covered is an empty result, not a cull")
	}
	if len(bricks) != 0 {
		t.Fatalf("got %d bricks, want 0", len(bricks))
	}
}

func TestNonUniformBoxDropped(t *testing.T) {
	// The mask disagrees with the single child footprint: the only candidate
	// box straddles a coverage boundary, so it is dropped, not subdivided.
	mask := grid.NewMask3([3]int{2, 2, 2})
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				if (x+y+z)%2 == 0 {
					mask.Set(x, y, z, 0)
				}
			}
		}
	}

	src := &spySource{
		dims:       [3]int{2, 2, 2},
		right:      [3]float64{1, 1, 1},
		footprints: []grid.Footprint{{Start: [3]int{0, 0, 0}, End: [3]int{2, 2, 2}}},
		mask:       mask,
		vertex:     constVertex([3]int{2, 2, 2}, 1),
	}

	bricks, skipped, err := Grid(src, "Density", false, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if skipped || len(bricks) != 0 {
		t.Fatalf("got skipped=%v bricks=%d, want zero bricks", skipped, len(bricks))
	}
}

func TestUnitCubeAllOnes(t *testing.T) {
	n := grid.UniformLeaf([3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", 1.0)

	bricks, skipped, err := Grid(n, "Density", false, nil)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if skipped || len(bricks) != 1 {
		t.Fatalf("got skipped=%v bricks=%d, want one brick", skipped, len(bricks))
	}

	b := bricks[0]
	if b.Dims != [3]int{2, 2, 2} || b.Data.Len() != 27 {
		t.Fatalf("got dims %v with %d samples, want (2,2,2) with 27", b.Dims, b.Data.Len())
	}
	for i, v := range b.Data.Values {
		if v != 1.0 {
			t.Fatalf("sample %d: got %v, want 1", i, v)
		}
	}
}

func TestUnitCubeOutOfBand(t *testing.T) {
	n := grid.UniformLeaf([3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, "Density", 1.0)

	bricks, skipped, err := Grid(n, "Density", false, &Range{Low: 5, High: 10})
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if !skipped || len(bricks) != 0 {
		t.Fatalf("got skipped=%v bricks=%d, want a clean skip", skipped, len(bricks))
	}
}

func TestRangeExcludes(t *testing.T) {
	r := Range{Low: 1, High: 10}

	cases := []struct {
		min, max float64
		want     bool
	}{
		{2, 5, false},
		{0.5, 1, false},  // touches the band edge
		{10, 20, false},  // touches the band edge
		{0.1, 0.9, true}, // entirely below
		{11, 20, true},   // entirely above
		{0, 100, false},  // spans the band
	}
	for _, c := range cases {
		if got := r.Excludes(c.min, c.max); got != c.want {
			t.Fatalf("Excludes(%v, %v) = %v, want %v", c.min, c.max, got, c.want)
		}
	}
}

func TestBrickValidate(t *testing.T) {
	b := &Brick{
		Data: grid.NewArray3([3]int{3, 3, 3}),
		Dims: [3]int{2, 2, 2},
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	b.Dims = [3]int{2, 2, 3}
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for non-vertex-shaped data")
	}

	b.Dims = [3]int{0, 2, 2}
	if err := b.Validate(); !apperrors.Is(err, apperrors.ErrBadDims) {
		t.Fatalf("got %v, want ErrBadDims", err)
	}
}
