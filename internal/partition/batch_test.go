package partition_test

import (
	"fmt"
	"testing"

	apperrors "github.com/xtxerr/amrcarve/internal/errors"
	"github.com/xtxerr/amrcarve/internal/grid"
	"github.com/xtxerr/amrcarve/internal/partition"
	apptesting "github.com/xtxerr/amrcarve/internal/testing"
)

// leafRow builds n unit leaves laid out along x, each with a uniform field
// value, so edges identify which source a brick came from.
func leafRow(values ...float64) []partition.Source {
	srcs := make([]partition.Source, len(values))
	for i, v := range values {
		x := float64(i)
		srcs[i] = grid.UniformLeaf(
			[3]int{2, 2, 2},
			[3]float64{x, 0, 0},
			[3]float64{x + 1, 1, 1},
			"Density", v,
		)
	}
	return srcs
}

func TestAllThresholdBand(t *testing.T) {
	srcs := leafRow(1.0, 100.0, 1.0)

	col, err := partition.All(srcs, "Density", &partition.Range{Low: 0.5, High: 2.0})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if col.Len() != 2 {
		t.Fatalf("got %d bricks, want 2 (middle grid culled)", col.Len())
	}

	// Input order survives, and the batch pass always log-scales.
	if col.Bricks[0].LeftEdge[0] != 0 || col.Bricks[1].LeftEdge[0] != 2 {
		t.Fatalf("brick order wrong: left x edges %v, %v",
			col.Bricks[0].LeftEdge[0], col.Bricks[1].LeftEdge[0])
	}
	for _, b := range col.Bricks {
		for i, v := range b.Data.Values {
			if v != 0 {
				t.Fatalf("sample %d: got %v, want log10(1) = 0", i, v)
			}
		}
	}
}

func TestAllIncludePredicate(t *testing.T) {
	srcs := leafRow(1.0, 1.0, 1.0)

	col, err := partition.All(srcs, "Density", nil,
		partition.WithInclude(func(s partition.Source) bool {
			left, _ := s.Bounds()
			return left[0] >= 1 // drop the first grid
		}),
	)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if col.Len() != 2 {
		t.Fatalf("got %d bricks, want 2", col.Len())
	}
	if col.Bricks[0].LeftEdge[0] != 1 {
		t.Fatalf("first brick left x = %v, want 1", col.Bricks[0].LeftEdge[0])
	}
}

func TestAllParallelMatchesSequential(t *testing.T) {
	values := make([]float64, 16)
	for i := range values {
		values[i] = float64(i + 1)
	}

	seq, err := partition.All(leafRow(values...), "Density", nil)
	if err != nil {
		t.Fatalf("sequential All: %v", err)
	}
	par, err := partition.All(leafRow(values...), "Density", nil,
		partition.WithWorkers(4))
	if err != nil {
		t.Fatalf("parallel All: %v", err)
	}

	if seq.Len() != par.Len() {
		t.Fatalf("brick counts differ: %d vs %d", seq.Len(), par.Len())
	}
	for i := range seq.Bricks {
		s, p := seq.Bricks[i], par.Bricks[i]
		if s.LeftEdge != p.LeftEdge || s.Dims != p.Dims {
			t.Fatalf("brick %d differs: %v/%v vs %v/%v",
				i, s.LeftEdge, s.Dims, p.LeftEdge, p.Dims)
		}
		for j := range s.Data.Values {
			if s.Data.Values[j] != p.Data.Values[j] {
				t.Fatalf("brick %d sample %d differs", i, j)
			}
		}
	}
}

func TestAllConcurrentPasses(t *testing.T) {
	gt := apptesting.NewGoroutineTest(t)
	defer gt.Wait()

	for w := 0; w < 4; w++ {
		gt.Go(func() error {
			col, err := partition.All(leafRow(1, 2, 3, 4), "Density", nil,
				partition.WithWorkers(2))
			if err != nil {
				return fmt.Errorf("batch pass: %w", err)
			}
			if col.Len() != 4 {
				return fmt.Errorf("got %d bricks, want 4", col.Len())
			}
			return nil
		})
	}
}

func TestAllDomainErrorAborts(t *testing.T) {
	srcs := leafRow(1.0, -1.0, 1.0) // log10 of the middle grid yields NaN

	_, err := partition.All(srcs, "Density", nil)
	if err == nil {
		t.Fatal("expected domain error to abort the pass")
	}
	if !apperrors.IsDomain(err) {
		t.Fatalf("got %v, want a domain error", err)
	}
}

func TestAllStats(t *testing.T) {
	stats, err := partition.NewStats(0.01)
	if err != nil {
		t.Fatalf("NewStats: %v", err)
	}

	srcs := leafRow(1.0, 100.0, 1.0)
	_, err = partition.All(srcs, "Density", &partition.Range{Low: 0.5, High: 2.0},
		partition.WithStats(stats))
	if err != nil {
		t.Fatalf("All: %v", err)
	}

	sum := stats.Summary()
	if sum.Grids != 3 || sum.Culled != 1 || sum.Bricks != 2 {
		t.Fatalf("summary %+v, want 3 grids, 1 culled, 2 bricks", sum)
	}
	if sum.Samples != 2*27 {
		t.Fatalf("samples = %d, want 54", sum.Samples)
	}
	if sum.ValueMin != 0 || sum.ValueMax != 0 {
		t.Fatalf("value range [%v, %v], want [0, 0]", sum.ValueMin, sum.ValueMax)
	}
}

func TestCollectionTotalSamples(t *testing.T) {
	col, err := partition.All(leafRow(1, 1), "Density", nil)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if got := col.TotalSamples(); got != 54 {
		t.Fatalf("TotalSamples = %d, want 54", got)
	}
}
