// Package parquet reads and writes partition bricks in Apache Parquet.
//
// One row per brick. Parquet's physical layout is columnar, so the on-disk
// file is effectively four parallel columns over the brick index: left edges,
// right edges, cell dims, and the flattened vertex sample data.
package parquet

import (
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/amrcarve/internal/partition"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// Metadata is stamped into the file footer as key/value pairs.
	Metadata map[string]string
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionZstd,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// BrickRow represents a brick in Parquet format. Dims are cell counts; data
// holds (dims+1)^3 vertex samples in row-major order, last axis fastest.
type BrickRow struct {
	LeftX  float64 `parquet:"left_x"`
	LeftY  float64 `parquet:"left_y"`
	LeftZ  float64 `parquet:"left_z"`
	RightX float64 `parquet:"right_x"`
	RightY float64 `parquet:"right_y"`
	RightZ float64 `parquet:"right_z"`
	DimsX  int64   `parquet:"dims_x"`
	DimsY  int64   `parquet:"dims_y"`
	DimsZ  int64   `parquet:"dims_z"`

	Data []float64 `parquet:"data,list"`
}

// BrickToRow converts a brick to its row form. The row aliases the brick's
// sample slice rather than copying it.
func BrickToRow(b *partition.Brick) BrickRow {
	return BrickRow{
		LeftX:  b.LeftEdge[0],
		LeftY:  b.LeftEdge[1],
		LeftZ:  b.LeftEdge[2],
		RightX: b.RightEdge[0],
		RightY: b.RightEdge[1],
		RightZ: b.RightEdge[2],
		DimsX:  int64(b.Dims[0]),
		DimsY:  int64(b.Dims[1]),
		DimsZ:  int64(b.Dims[2]),
		Data:   b.Data.Values,
	}
}
