// Package duckdb exports analysis reports to a DuckDB database so markers
// and drug results can be queried with SQL after a run.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding exported reports.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create export directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		report_id VARCHAR PRIMARY KEY,
		source VARCHAR,
		format VARCHAR,
		compression VARCHAR,
		strategy VARCHAR,
		marker_count BIGINT,
		matched_markers BIGINT,
		source_size BIGINT,
		source_mtime TIMESTAMP,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS markers (
		report_id VARCHAR,
		ordinal BIGINT,
		rsid VARCHAR,
		genotype VARCHAR,
		PRIMARY KEY (report_id, rsid)
	)`,
	`CREATE TABLE IF NOT EXISTS drug_results (
		report_id VARCHAR,
		ordinal BIGINT,
		drug VARCHAR,
		gene VARCHAR,
		direction VARCHAR,
		phenotype VARCHAR,
		score BIGINT,
		evidence BOOLEAN,
		explanation VARCHAR,
		advisory VARCHAR,
		PRIMARY KEY (report_id, drug)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
