// Package history keeps a SQLite log of past comparison runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/schemadiff/internal/config"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS runs (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	ran_at            DATETIME DEFAULT CURRENT_TIMESTAMP,
	local_endpoint    TEXT NOT NULL,
	remote_endpoint   TEXT NOT NULL,
	duration_ms       INTEGER,
	identical_schemas INTEGER,
	different_schemas INTEGER,
	error             TEXT
)`

// Run summarizes one comparison.
type Run struct {
	ID               int64     `json:"id"`
	RanAt            time.Time `json:"ran_at"`
	Local            string    `json:"local"`
	Remote           string    `json:"remote"`
	DurationMS       int64     `json:"duration_ms"`
	IdenticalSchemas int       `json:"identical_schemas"`
	DifferentSchemas int       `json:"different_schemas"`
	Error            string    `json:"error,omitempty"`
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool { return r.Error != "" }

// Store is a SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ConfigDir()/history.db.
func DefaultPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("history: config dir: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) the store at path, or at DefaultPath when path is
// empty, and ensures the table exists.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	// Serializes writers from concurrent HTTP requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}
	return &Store{db: db}, nil
}

// Add records r. RanAt defaults to now.
func (s *Store) Add(ctx context.Context, r Run) error {
	if r.RanAt.IsZero() {
		r.RanAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (ran_at, local_endpoint, remote_endpoint, duration_ms, identical_schemas, different_schemas, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RanAt, r.Local, r.Remote, r.DurationMS, r.IdenticalSchemas, r.DifferentSchemas, r.Error,
	)
	if err != nil {
		return fmt.Errorf("history add: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ran_at, local_endpoint, remote_endpoint, duration_ms, identical_schemas, different_schemas, error
		 FROM runs
		 ORDER BY ran_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Search returns up to limit runs whose local or remote endpoint matches the
// SQL LIKE pattern, newest first.
func (s *Store) Search(ctx context.Context, pattern string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ran_at, local_endpoint, remote_endpoint, duration_ms, identical_schemas, different_schemas, error
		 FROM runs
		 WHERE local_endpoint LIKE ? OR remote_endpoint LIKE ?
		 ORDER BY ran_at DESC, id DESC
		 LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Clear deletes every run.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	runs := []Run{}
	for rows.Next() {
		var (
			r      Run
			errMsg sql.NullString
		)
		if err := rows.Scan(
			&r.ID,
			&r.RanAt,
			&r.Local,
			&r.Remote,
			&r.DurationMS,
			&r.IdenticalSchemas,
			&r.DifferentSchemas,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		r.Error = errMsg.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return runs, nil
}
