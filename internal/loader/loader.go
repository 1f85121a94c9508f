// Package loader reads and validates the YAML pipeline configuration.
//
// Example pipeline.yaml:
//
//	log:
//	  level: info
//	  json: false
//	partition:
//	  field: Density
//	  threshold:
//	    low: 1.0e-28
//	    high: 1.0e-24
//	  levels:
//	    min: 0
//	    max: 8
//	  workers: 4
//	storage:
//	  output: partitions.parquet
//	  compression: zstd
//	stats:
//	  enabled: true
//	  accuracy: 0.01
//	query:
//	  memory_limit: 512MB
//	  row_limit: 1000
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtxerr/amrcarve/config"
	"github.com/xtxerr/amrcarve/internal/validation"
)

// Config is the complete pipeline configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Partition PartitionConfig `yaml:"partition"`
	Storage   StorageConfig   `yaml:"storage"`
	Stats     StatsConfig     `yaml:"stats"`
	Query     QueryConfig     `yaml:"query"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// PartitionConfig configures the batch partitioning pass.
type PartitionConfig struct {
	// Field is the scalar field to partition.
	Field string `yaml:"field"`

	// Threshold culls grids whose field range lies outside the band.
	// Omitted means unbounded (no grid is culled).
	Threshold *ThresholdConfig `yaml:"threshold"`

	// Levels restricts the pass to a refinement-level band.
	Levels *LevelsConfig `yaml:"levels"`

	// Workers is the number of grids partitioned concurrently.
	Workers int `yaml:"workers"`
}

// ThresholdConfig is a closed value band.
type ThresholdConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// LevelsConfig is an inclusive refinement-level band.
type LevelsConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// StorageConfig configures the export destination.
type StorageConfig struct {
	Output      string `yaml:"output"`
	Compression string `yaml:"compression"`
}

// StatsConfig configures the batch statistics collector.
type StatsConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Accuracy float64 `yaml:"accuracy"`
}

// QueryConfig configures the inspection service.
type QueryConfig struct {
	MemoryLimit string `yaml:"memory_limit"`
	RowLimit    int    `yaml:"row_limit"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Partition: PartitionConfig{
			Field:   config.DefaultField,
			Workers: config.DefaultWorkers,
		},
		Storage: StorageConfig{
			Output:      config.DefaultOutputPath,
			Compression: "zstd",
		},
		Stats: StatsConfig{
			Enabled:  true,
			Accuracy: config.DefaultSketchAccuracy,
		},
		Query: QueryConfig{
			MemoryLimit: config.DefaultQueryMemoryLimit,
			RowLimit:    config.DefaultQueryRowLimit,
		},
	}
}

// Load reads, defaults and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values that yaml.Unmarshal may have cleared.
func (c *Config) applyDefaults() {
	if c.Partition.Field == "" {
		c.Partition.Field = config.DefaultField
	}
	if c.Partition.Workers == 0 {
		c.Partition.Workers = config.DefaultWorkers
	}
	if c.Storage.Output == "" {
		c.Storage.Output = config.DefaultOutputPath
	}
	if c.Stats.Accuracy == 0 {
		c.Stats.Accuracy = config.DefaultSketchAccuracy
	}
	if c.Query.RowLimit == 0 {
		c.Query.RowLimit = config.DefaultQueryRowLimit
	}
}

// Validate checks the configuration, collecting every problem.
func (c *Config) Validate() error {
	v := validation.New()

	v.RequireField("partition.field", c.Partition.Field)
	v.RequirePositive("partition.workers", c.Partition.Workers)
	if c.Partition.Threshold != nil {
		v.RequireBand("partition.threshold", c.Partition.Threshold.Low, c.Partition.Threshold.High)
	}
	if c.Partition.Levels != nil {
		if c.Partition.Levels.Min < 0 {
			v.Fail("partition.levels.min", "must be >= 0")
		}
		if c.Partition.Levels.Max < c.Partition.Levels.Min {
			v.Fail("partition.levels.max", "must be >= min")
		}
	}
	v.RequireField("storage.output", c.Storage.Output)
	if c.Stats.Enabled {
		if c.Stats.Accuracy <= 0 || c.Stats.Accuracy >= 1 {
			v.Fail("stats.accuracy", "must be in (0, 1)")
		}
	}
	v.RequirePositive("query.row_limit", c.Query.RowLimit)

	return v.Err()
}
