// Package history persists estimation results so runs over the same
// tree (or different corpora) can be compared later. Recording is
// best-effort from the tool's point of view: callers log and continue
// when the store fails.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DefaultLimit is the default number of runs returned by ListRuns.
const DefaultLimit = 20

// Record is one persisted estimation run.
type Record struct {
	ID               int64     `yaml:"-"`
	RunID            string    `yaml:"run_id"`
	Root             string    `yaml:"root"`
	Algorithm        string    `yaml:"algorithm"`
	SampleCount      int       `yaml:"sample_count"`
	UncompressedSize int64     `yaml:"uncompressed_size"`
	MeanCompressed   float64   `yaml:"mean_compressed"`
	StdDev           float64   `yaml:"stddev"`
	DurationMS       int64     `yaml:"duration_ms"`
	Timestamp        time.Time `yaml:"timestamp"`
}

// Store manages the SQLite database of estimation runs.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the database at dbPath and
// ensures the schema exists. ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks held
	// by a concurrent invocation.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// RecordRun inserts one estimation run. A zero Timestamp is replaced
// with the current time.
func (s *Store) RecordRun(ctx context.Context, rec *Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, root, algorithm, sample_count,
			uncompressed_size, mean_compressed, stddev, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Root, rec.Algorithm, rec.SampleCount,
		rec.UncompressedSize, rec.MeanCompressed, rec.StdDev,
		rec.DurationMS, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListRuns returns the most recent runs for root, newest first. A root
// of "" lists runs for every root. A limit of zero or less applies
// DefaultLimit.
func (s *Store) ListRuns(ctx context.Context, root string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT id, run_id, root, algorithm, sample_count,
			uncompressed_size, mean_compressed, stddev, duration_ms, timestamp
		FROM runs`
	args := []any{}
	if root != "" {
		query += ` WHERE root = ?`
		args = append(args, root)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Root, &rec.Algorithm,
			&rec.SampleCount, &rec.UncompressedSize, &rec.MeanCompressed,
			&rec.StdDev, &rec.DurationMS, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return records, nil
}
