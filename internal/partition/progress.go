package partition

import "log/slog"

// Progress is the callback collaborator invoked around a batch pass. It has
// no effect on the result; implementations may be no-ops.
type Progress interface {
	// Update is called once per input grid with its index.
	Update(i int)
	// Finish is called after the loop, exactly once.
	Finish()
}

// NopProgress discards all progress notifications.
type NopProgress struct{}

func (NopProgress) Update(int) {}
func (NopProgress) Finish()    {}

// LogProgress reports batch progress through a structured logger, at debug
// level per grid and info level on completion.
type LogProgress struct {
	Log   *slog.Logger
	Total int
}

func (p *LogProgress) Update(i int) {
	p.Log.Debug("partitioning", "grid", i, "total", p.Total)
}

func (p *LogProgress) Finish() {
	p.Log.Info("partitioning finished", "total", p.Total)
}
