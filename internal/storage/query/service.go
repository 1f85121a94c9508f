// Package query provides DuckDB-backed inspection of exported partition
// files, for the CLI and the interactive shell. It never loads brick data
// into memory; everything runs as SQL over the Parquet columns.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

// Service provides query capabilities over exported partition files.
type Service struct {
	mu sync.RWMutex

	db    *sql.DB
	stats Stats
}

// Stats holds query statistics.
type Stats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// New creates a new query service with an in-memory DuckDB instance.
// memoryLimit caps the engine's memory (e.g. "512MB"); empty means the
// engine default.
func New(memoryLimit string) (*Service, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if memoryLimit != "" {
		if _, err := db.Exec(fmt.Sprintf("SET memory_limit='%s'", memoryLimit)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Service{db: db}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Summary aggregates one exported file: brick count, total samples, and the
// world-space bounds of the whole collection.
type Summary struct {
	Bricks  int64
	Samples int64

	LeftEdge  [3]float64
	RightEdge [3]float64
}

// Summarize computes a Summary for the file at path.
func (s *Service) Summarize(ctx context.Context, path string) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT
			count(*),
			coalesce(sum(len(data)), 0),
			coalesce(min(left_x), 0), coalesce(min(left_y), 0), coalesce(min(left_z), 0),
			coalesce(max(right_x), 0), coalesce(max(right_y), 0), coalesce(max(right_z), 0)
		FROM read_parquet($1)
	`

	var sum Summary
	err := s.db.QueryRowContext(ctx, query, path).Scan(
		&sum.Bricks, &sum.Samples,
		&sum.LeftEdge[0], &sum.LeftEdge[1], &sum.LeftEdge[2],
		&sum.RightEdge[0], &sum.RightEdge[1], &sum.RightEdge[2],
	)
	if err != nil {
		s.countError()
		return nil, fmt.Errorf("summarize %s: %w", path, err)
	}

	s.countQuery(1)
	return &sum, nil
}

// BricksInRegion counts bricks whose bounding box intersects the world-space
// box [left, right], the question a renderer's frustum culling asks first.
func (s *Service) BricksInRegion(ctx context.Context, path string, left, right [3]float64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT count(*)
		FROM read_parquet($1)
		WHERE right_x > $2 AND left_x < $5
		  AND right_y > $3 AND left_y < $6
		  AND right_z > $4 AND left_z < $7
	`

	var n int64
	err := s.db.QueryRowContext(ctx, query, path,
		left[0], left[1], left[2], right[0], right[1], right[2]).Scan(&n)
	if err != nil {
		s.countError()
		return 0, fmt.Errorf("region query %s: %w", path, err)
	}

	s.countQuery(1)
	return n, nil
}

// AttachView exposes an exported file as a named SQL view, so shell users
// can write FROM bricks instead of spelling out read_parquet.
func (s *Service) AttachView(ctx context.Context, name, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM read_parquet('%s')",
		name, strings.ReplaceAll(path, "'", "''"))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		s.stats.Errors++
		return fmt.Errorf("attach view %s: %w", name, err)
	}
	return nil
}

// ExecuteSQL executes a raw SQL query. This is the escape hatch behind the
// interactive shell; read_parquet over the exported file is expected but any
// DuckDB statement runs.
func (s *Service) ExecuteSQL(ctx context.Context, query string) ([]string, []map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.countError()
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	s.countQuery(int64(len(results)))
	return columns, results, rows.Err()
}

// Stats returns query statistics.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Service) countQuery(rows int64) {
	s.stats.QueriesExecuted++
	s.stats.RowsReturned += rows
}

func (s *Service) countError() {
	s.stats.Errors++
}
