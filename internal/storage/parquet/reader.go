package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// BrickReader reads brick rows from a Parquet file.
type BrickReader struct {
	file   *os.File
	reader *parquet.GenericReader[BrickRow]
	path   string
}

// NewBrickReader opens a brick Parquet file for reading.
func NewBrickReader(path string) (*BrickReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size(), parquet.ReadBufferSize(1024*1024))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[BrickRow](pf)

	return &BrickReader{
		file:   f,
		reader: reader,
		path:   path,
	}, nil
}

// ReadAll reads every row from the file.
func (r *BrickReader) ReadAll() ([]BrickRow, error) {
	numRows := r.reader.NumRows()
	if numRows == 0 {
		return nil, nil
	}
	rows := make([]BrickRow, numRows)

	n, err := r.reader.Read(rows)
	if err != nil && n < int(numRows) {
		// GenericReader returns io.EOF alongside the final batch; only a
		// short read is a real failure.
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows[:n], nil
}

// NumRows returns the total number of rows in the file.
func (r *BrickReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *BrickReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *BrickReader) Path() string {
	return r.path
}

// FileMetadata returns the key/value metadata embedded in the file footer.
func FileMetadata(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	md := make(map[string]string)
	for _, kv := range pf.Metadata().KeyValueMetadata {
		md[kv.Key] = kv.Value
	}
	return md, nil
}
