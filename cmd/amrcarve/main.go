// amrcarve partitions AMR grid hierarchies into renderable bricks and
// inspects the exported results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/xtxerr/amrcarve/internal/grid"
	"github.com/xtxerr/amrcarve/internal/loader"
	"github.com/xtxerr/amrcarve/internal/logging"
	"github.com/xtxerr/amrcarve/internal/partition"
	"github.com/xtxerr/amrcarve/internal/shell"
	"github.com/xtxerr/amrcarve/internal/storage"
	pq "github.com/xtxerr/amrcarve/internal/storage/parquet"
	"github.com/xtxerr/amrcarve/internal/storage/query"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// CLI flags
	cfgPath := flag.String("config", "pipeline.yaml", "config file path")
	demo := flag.Bool("demo", false, "partition a synthetic hierarchy and export it")
	out := flag.String("out", "", "output file (overrides config)")
	field := flag.String("field", "", "scalar field name (overrides config)")
	workers := flag.Int("workers", 0, "concurrent grids in the batch pass (overrides config)")
	info := flag.String("info", "", "print a summary of an exported file and exit")
	sqlQuery := flag.String("sql", "", "run one SQL statement against -file and exit")
	file := flag.String("file", "", "exported partition file for -sql and -shell")
	shellMode := flag.Bool("shell", false, "interactive SQL shell over -file")
	logLevel := flag.String("log-level", "", "debug, info, warn, error (overrides config)")
	jsonLog := flag.Bool("json", false, "JSON log output")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = loader.DefaultConfig()
		} else {
			log.Fatalf("Load config: %v", err)
		}
	}

	// CLI overrides
	if *out != "" {
		cfg.Storage.Output = *out
	}
	if *field != "" {
		cfg.Partition.Field = *field
	}
	if *workers > 0 {
		cfg.Partition.Workers = *workers
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logging.Init(logging.ParseLevel(cfg.Log.Level), cfg.Log.JSON || *jsonLog)
	logging.Info("amrcarve starting", "version", Version)

	ctx := context.Background()

	switch {
	case *info != "":
		fi, err := storage.Info(*info)
		if err != nil {
			log.Fatalf("Info: %v", err)
		}
		fmt.Println(fi)

	case *sqlQuery != "":
		if *file == "" {
			log.Fatal("-sql requires -file")
		}
		if err := runSQL(ctx, cfg, *file, *sqlQuery); err != nil {
			log.Fatalf("SQL: %v", err)
		}

	case *shellMode:
		if *file == "" {
			log.Fatal("-shell requires -file")
		}
		svc, err := query.New(cfg.Query.MemoryLimit)
		if err != nil {
			log.Fatalf("Query service: %v", err)
		}
		defer svc.Close()
		if err := shell.New(svc, *file, cfg.Query.RowLimit).Run(ctx); err != nil {
			log.Fatalf("Shell: %v", err)
		}

	case *demo:
		if err := runDemo(cfg); err != nil {
			log.Fatalf("Demo: %v", err)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runDemo builds a deterministic three-grid hierarchy, partitions it, and
// exports the result to the configured output path.
func runDemo(cfg *loader.Config) error {
	lg := logging.Component("demo")
	fieldName := cfg.Partition.Field

	// A positive blob on the root so log scaling stays finite.
	blob := func(x, y, z float64) float64 {
		r2 := (x-0.5)*(x-0.5) + (y-0.5)*(y-0.5) + (z-0.5)*(z-0.5)
		return 1e-27 * (1 + 100*math.Exp(-r2/0.02))
	}

	root := grid.FuncLeaf([3]int{16, 16, 16}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, fieldName, blob)

	for _, box := range []grid.Footprint{
		{Start: [3]int{2, 2, 2}, End: [3]int{6, 6, 6}},
		{Start: [3]int{9, 9, 9}, End: [3]int{13, 13, 13}},
	} {
		child, err := root.RefineBox(box.Start, box.End)
		if err != nil {
			return err
		}
		if err := child.FillField(fieldName, blob); err != nil {
			return err
		}
	}

	nodes := grid.Flatten(root)
	grids := make([]partition.Source, len(nodes))
	for i, n := range nodes {
		grids[i] = n
	}

	var thr *partition.Range
	if cfg.Partition.Threshold != nil {
		thr = &partition.Range{Low: cfg.Partition.Threshold.Low, High: cfg.Partition.Threshold.High}
	}

	opts := []partition.BatchOption{
		partition.WithProgress(&partition.LogProgress{Log: lg, Total: len(grids)}),
		partition.WithWorkers(cfg.Partition.Workers),
	}
	if lv := cfg.Partition.Levels; lv != nil {
		opts = append(opts, partition.WithInclude(func(s partition.Source) bool {
			n, ok := s.(*grid.Node)
			return !ok || (n.Level >= lv.Min && n.Level <= lv.Max)
		}))
	}

	var stats *partition.Stats
	if cfg.Stats.Enabled {
		var err error
		stats, err = partition.NewStats(cfg.Stats.Accuracy)
		if err != nil {
			return err
		}
		opts = append(opts, partition.WithStats(stats))
	}

	col, err := partition.All(grids, fieldName, thr, opts...)
	if err != nil {
		return err
	}
	if stats != nil {
		stats.Log(lg)
	}

	pqOpts := pq.DefaultOptions()
	pqOpts.Compression = pq.ParseCompressionType(cfg.Storage.Compression)
	return storage.ExportOptions(col, cfg.Storage.Output, pqOpts)
}

// runSQL executes one statement against an exported file and prints the
// rows, tab-separated.
func runSQL(ctx context.Context, cfg *loader.Config, path, stmt string) error {
	svc, err := query.New(cfg.Query.MemoryLimit)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.AttachView(ctx, "bricks", path); err != nil {
		return err
	}

	columns, rows, err := svc.ExecuteSQL(ctx, stmt)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(columns, "\t"))
	for i, row := range rows {
		if i >= cfg.Query.RowLimit {
			fmt.Printf("... (%d rows truncated)\n", len(rows)-cfg.Query.RowLimit)
			break
		}
		parts := make([]string, len(columns))
		for j, col := range columns {
			parts[j] = fmt.Sprintf("%v", row[col])
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	return nil
}
