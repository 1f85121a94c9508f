// Package config provides configuration defaults and utilities
// for the amrcarve pipeline.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via pipeline.yaml or CLI flags.
package config

// =============================================================================
// Partitioning Defaults
// =============================================================================

const (
	// DefaultField is the scalar field partitioned when none is configured.
	// Override via config: partition.field
	DefaultField = "Density"

	// DefaultThresholdLow and DefaultThresholdHigh form an effectively
	// unbounded cull band, so no grid is skipped unless a band is configured.
	// Override via config: partition.threshold
	DefaultThresholdLow  = -1e300
	DefaultThresholdHigh = 1e300

	// DefaultWorkers is the number of grids partitioned concurrently in a
	// batch pass. 1 means strictly sequential; result order is preserved
	// either way.
	// Override via config: partition.workers
	DefaultWorkers = 1
)

// =============================================================================
// Storage Defaults
// =============================================================================

const (
	// FormatVersion is written into every exported partition file's
	// key/value metadata. Files without the key are read using the legacy
	// vertex-count dims convention.
	FormatVersion = "1"

	// FormatVersionKey is the metadata key carrying FormatVersion.
	FormatVersionKey = "amrcarve.format_version"

	// DefaultOutputPath is the export destination when none is configured.
	// Override via config: storage.output
	DefaultOutputPath = "partitions.parquet"

	// DefaultReadBufferSize is the Parquet read buffer size in bytes.
	DefaultReadBufferSize = 1024 * 1024
)

// =============================================================================
// Query Defaults
// =============================================================================

const (
	// DefaultQueryMemoryLimit caps DuckDB memory for inspection queries.
	// Empty means the engine default.
	// Override via config: query.memory_limit
	DefaultQueryMemoryLimit = ""

	// DefaultQueryRowLimit bounds rows returned by ad-hoc shell queries.
	// Override via config: query.row_limit
	DefaultQueryRowLimit = 1000
)

// =============================================================================
// Statistics Defaults
// =============================================================================

const (
	// DefaultSketchAccuracy is the DDSketch relative accuracy used for
	// batch value distributions (0.01 = 1% error).
	// Override via config: stats.accuracy
	DefaultSketchAccuracy = 0.01
)
