package partition

import (
	"math"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"
	"log/slog"
)

// Stats accumulates a distribution summary over one batch pass: how many
// grids were seen, how many were culled, how many bricks came out, and a
// DDSketch of the emitted sample values and brick sizes. Safe for concurrent
// use so the parallel batch path can share one collector.
type Stats struct {
	mu sync.Mutex

	grids  int
	culled int
	bricks int

	samples int64
	values  *ddsketch.DDSketch
	sizes   *ddsketch.DDSketch
}

// NewStats creates a collector with the given DDSketch relative accuracy
// (0.01 = 1% error).
func NewStats(accuracy float64) (*Stats, error) {
	values, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		return nil, err
	}
	sizes, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		return nil, err
	}
	return &Stats{values: values, sizes: sizes}, nil
}

// ObserveGrid records one input grid and whether the threshold culled it.
func (s *Stats) ObserveGrid(culled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids++
	if culled {
		s.culled++
	}
}

// ObserveBrick records one emitted brick: its element count and every finite
// sample value. Non-finite samples (log10 of zero yields -Inf, which the NaN
// contract does not reject) are skipped rather than poisoning the sketch.
func (s *Stats) ObserveBrick(b *Brick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bricks++
	s.samples += int64(b.Data.Len())
	_ = s.sizes.Add(float64(b.Data.Len()))
	for _, v := range b.Data.Values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		_ = s.values.Add(v)
	}
}

// Summary is a point-in-time snapshot of the collector.
type Summary struct {
	Grids   int
	Culled  int
	Bricks  int
	Samples int64

	ValueMin float64
	ValueMax float64
	ValueP50 float64
	ValueP95 float64

	SizeP50 float64
	SizeP95 float64
}

// Summary returns the current snapshot. Quantile fields are NaN until at
// least one sample has been observed.
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Grids:   s.grids,
		Culled:  s.culled,
		Bricks:  s.bricks,
		Samples: s.samples,
	}
	sum.ValueMin = quantileOr(s.values.GetMinValue())
	sum.ValueMax = quantileOr(s.values.GetMaxValue())
	sum.ValueP50 = quantileOrAt(s.values, 0.5)
	sum.ValueP95 = quantileOrAt(s.values, 0.95)
	sum.SizeP50 = quantileOrAt(s.sizes, 0.5)
	sum.SizeP95 = quantileOrAt(s.sizes, 0.95)
	return sum
}

// Log writes the summary through a structured logger.
func (s *Stats) Log(log *slog.Logger) {
	sum := s.Summary()
	log.Info("batch summary",
		"grids", sum.Grids,
		"culled", sum.Culled,
		"bricks", sum.Bricks,
		"samples", sum.Samples,
		"value_min", sum.ValueMin,
		"value_max", sum.ValueMax,
		"value_p50", sum.ValueP50,
		"value_p95", sum.ValueP95,
		"size_p50", sum.SizeP50,
		"size_p95", sum.SizeP95,
	)
}

func quantileOr(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}

func quantileOrAt(sk *ddsketch.DDSketch, q float64) float64 {
	v, err := sk.GetValueAtQuantile(q)
	if err != nil {
		return math.NaN()
	}
	return v
}
