package partition

import (
	"golang.org/x/sync/errgroup"
)

// Collection is an ordered sequence of bricks. Order is append order from
// the batch pass; it carries no meaning beyond stable iteration for
// serialization.
type Collection struct {
	Bricks []*Brick
}

// Len returns the brick count.
func (c *Collection) Len() int {
	return len(c.Bricks)
}

// Append adds bricks in order.
func (c *Collection) Append(bricks ...*Brick) {
	c.Bricks = append(c.Bricks, bricks...)
}

// TotalSamples returns the summed element count of all brick data arrays.
func (c *Collection) TotalSamples() int64 {
	var n int64
	for _, b := range c.Bricks {
		n += int64(b.Data.Len())
	}
	return n
}

type batchConfig struct {
	include  func(Source) bool
	progress Progress
	workers  int
	stats    *Stats
}

// BatchOption configures a batch pass.
type BatchOption func(*batchConfig)

// WithInclude sets a predicate; grids it rejects are skipped with no
// further work.
func WithInclude(f func(Source) bool) BatchOption {
	return func(c *batchConfig) { c.include = f }
}

// WithProgress sets the progress collaborator.
func WithProgress(p Progress) BatchOption {
	return func(c *batchConfig) { c.progress = p }
}

// WithWorkers partitions up to n grids concurrently. Grids carry no data
// dependencies on each other, so this only reorders work, never results:
// output order matches input order regardless of n.
func WithWorkers(n int) BatchOption {
	return func(c *batchConfig) { c.workers = n }
}

// WithStats feeds per-grid and per-brick observations into a collector.
func WithStats(s *Stats) BatchOption {
	return func(c *batchConfig) { c.stats = s }
}

// All partitions every grid in order and concatenates the results.
//
// Log scaling is always applied in the batch pass. A nil thr means an
// unbounded band (no grid is culled). Threshold-culled grids and
// predicate-rejected grids contribute nothing; a domain error from any grid
// aborts the pass and propagates unmodified.
func All(grids []Source, field string, thr *Range, opts ...BatchOption) (*Collection, error) {
	cfg := batchConfig{progress: NopProgress{}, workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	defer cfg.progress.Finish()

	if cfg.workers > 1 {
		return allParallel(grids, field, thr, &cfg)
	}

	out := &Collection{}
	for i, g := range grids {
		if cfg.include != nil && !cfg.include(g) {
			continue
		}
		cfg.progress.Update(i)

		bricks, skipped, err := Grid(g, field, true, thr)
		if err != nil {
			return nil, err
		}
		if cfg.stats != nil {
			cfg.stats.ObserveGrid(skipped)
			for _, b := range bricks {
				cfg.stats.ObserveBrick(b)
			}
		}
		out.Append(bricks...)
	}
	return out, nil
}

// allParallel runs the same pass with a bounded worker pool. Results land in
// per-index slots and are concatenated in input order afterwards, so the
// output is identical to the sequential pass.
func allParallel(grids []Source, field string, thr *Range, cfg *batchConfig) (*Collection, error) {
	results := make([][]*Brick, len(grids))

	var eg errgroup.Group
	eg.SetLimit(cfg.workers)

	for i, g := range grids {
		if cfg.include != nil && !cfg.include(g) {
			continue
		}
		eg.Go(func() error {
			cfg.progress.Update(i)
			bricks, skipped, err := Grid(g, field, true, thr)
			if err != nil {
				return err
			}
			if cfg.stats != nil {
				cfg.stats.ObserveGrid(skipped)
				for _, b := range bricks {
					cfg.stats.ObserveBrick(b)
				}
			}
			results[i] = bricks
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Collection{}
	for _, bricks := range results {
		out.Append(bricks...)
	}
	return out, nil
}
