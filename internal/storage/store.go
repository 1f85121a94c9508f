// Package storage persists partition collections.
//
// Export is all-or-nothing: bricks are written to a temporary file beside
// the destination and atomically renamed into place, so a failed or
// interrupted export never leaves a readable-but-truncated file. Import
// performs no partial reconstruction; any inconsistency in the persisted
// layout is a format error.
package storage

import (
	"fmt"
	"os"

	"github.com/xtxerr/amrcarve/config"
	apperrors "github.com/xtxerr/amrcarve/internal/errors"
	"github.com/xtxerr/amrcarve/internal/grid"
	"github.com/xtxerr/amrcarve/internal/logging"
	"github.com/xtxerr/amrcarve/internal/partition"
	pq "github.com/xtxerr/amrcarve/internal/storage/parquet"
)

// Export writes the collection to path. Every brick must satisfy the
// vertex/cell shape invariant; the first violation aborts the export before
// anything is visible at path.
func Export(col *partition.Collection, path string) error {
	return ExportOptions(col, path, pq.DefaultOptions())
}

// ExportOptions is Export with explicit Parquet options. The format version
// is always stamped into the file metadata, on top of whatever metadata the
// options carry.
func ExportOptions(col *partition.Collection, path string, opts pq.Options) error {
	for i, b := range col.Bricks {
		if err := b.Validate(); err != nil {
			return apperrors.Wrapf(err, "brick %d", i)
		}
	}

	md := map[string]string{config.FormatVersionKey: config.FormatVersion}
	for k, v := range opts.Metadata {
		md[k] = v
	}
	opts.Metadata = md

	tmp := path + ".tmp"
	w, err := pq.NewBrickWriter(tmp, opts)
	if err != nil {
		return err
	}

	if err := w.Write(col.Bricks); err != nil {
		w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	logging.Component("storage").Info("exported partitions",
		"path", path, "bricks", col.Len(), "samples", col.TotalSamples())
	return nil
}

// Import reads a collection back from path.
//
// Files stamped with the current format version store cell-count dims and
// (dims+1)^3 vertex samples per row. Files without a version stamp use the
// legacy convention: stored dims are vertex counts and the logical cell dims
// are one smaller per axis. Both reconstruct to the same in-memory shape.
func Import(path string) (*partition.Collection, error) {
	md, err := pq.FileMetadata(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFormat, err.Error())
	}

	version, versioned := md[config.FormatVersionKey]
	if versioned && version != config.FormatVersion {
		return nil, apperrors.Wrapf(apperrors.ErrUnknownVersion, "version %q", version)
	}

	r, err := pq.NewBrickReader(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFormat, err.Error())
	}
	defer r.Close()

	rows, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFormat, err.Error())
	}

	col := &partition.Collection{Bricks: make([]*partition.Brick, 0, len(rows))}
	for i := range rows {
		b, err := rowToBrick(&rows[i], versioned)
		if err != nil {
			return nil, apperrors.Wrapf(err, "row %d", i)
		}
		col.Append(b)
	}
	return col, nil
}

// rowToBrick reconstructs one brick. versioned selects the dims convention.
func rowToBrick(row *pq.BrickRow, versioned bool) (*partition.Brick, error) {
	stored := [3]int{int(row.DimsX), int(row.DimsY), int(row.DimsZ)}

	var cellDims, vertexDims [3]int
	for i := 0; i < 3; i++ {
		if versioned {
			cellDims[i] = stored[i]
			vertexDims[i] = stored[i] + 1
		} else {
			cellDims[i] = stored[i] - 1
			vertexDims[i] = stored[i]
		}
		if cellDims[i] <= 0 {
			return nil, apperrors.Wrapf(apperrors.ErrBadDims, "stored dims %v", stored)
		}
	}

	want := vertexDims[0] * vertexDims[1] * vertexDims[2]
	if len(row.Data) != want {
		return nil, apperrors.Wrapf(apperrors.ErrDataTruncated,
			"%d samples for dims %v (want %d)", len(row.Data), stored, want)
	}

	// The row's slice is owned by the reader's decode buffer lifecycle;
	// copy so the brick owns its data outright.
	values := make([]float64, want)
	copy(values, row.Data)
	data, err := grid.FromValues(vertexDims, values)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFormat, err.Error())
	}

	return &partition.Brick{
		Data:      data,
		LeftEdge:  [3]float64{row.LeftX, row.LeftY, row.LeftZ},
		RightEdge: [3]float64{row.RightX, row.RightY, row.RightZ},
		Dims:      cellDims,
	}, nil
}

// FileInfo summarizes an exported partition file.
type FileInfo struct {
	Path          string
	Size          int64
	Bricks        int64
	FormatVersion string // empty for legacy files
}

// Info returns summary information about an exported file without
// reconstructing the bricks.
func Info(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	md, err := pq.FileMetadata(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFormat, err.Error())
	}

	r, err := pq.NewBrickReader(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFormat, err.Error())
	}
	defer r.Close()

	return &FileInfo{
		Path:          path,
		Size:          stat.Size(),
		Bricks:        r.NumRows(),
		FormatVersion: md[config.FormatVersionKey],
	}, nil
}

// String renders the info the way the CLI prints it.
func (fi *FileInfo) String() string {
	version := fi.FormatVersion
	if version == "" {
		version = "legacy"
	}
	return fmt.Sprintf("%s: %d bricks, %d bytes, format %s", fi.Path, fi.Bricks, fi.Size, version)
}
