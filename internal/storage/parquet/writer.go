package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"

	"github.com/xtxerr/amrcarve/internal/partition"
)

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet writer is closed")

// BrickWriter writes bricks to a Parquet file.
type BrickWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[BrickRow]
	rowCount int64
	closed   bool
}

// NewBrickWriter creates a new brick Parquet writer at path.
func NewBrickWriter(path string, opts Options) (*BrickWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression)),
	}
	for k, v := range opts.Metadata {
		writerOpts = append(writerOpts, parquet.KeyValueMetadata(k, v))
	}

	writer := parquet.NewGenericWriter[BrickRow](f, writerOpts...)

	return &BrickWriter{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write writes bricks to the Parquet file.
func (w *BrickWriter) Write(bricks []*partition.Brick) error {
	if len(bricks) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	rows := make([]BrickRow, len(bricks))
	for i, b := range bricks {
		rows[i] = BrickToRow(b)
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close flushes the footer and syncs the file to disk.
func (w *BrickWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	return w.file.Close()
}

// Abort closes and removes the partially written file.
func (w *BrickWriter) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		w.writer.Close()
		w.file.Close()
	}
	os.Remove(w.path)
}

// RowCount returns the number of rows written.
func (w *BrickWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *BrickWriter) Path() string {
	return w.path
}
