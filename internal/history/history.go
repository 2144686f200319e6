// Package history persists backup run summaries to a local SQLite
// database, so operators can detect incomplete backups across runs.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/graphback/graphback/pkg/backup"
	"github.com/graphback/graphback/pkg/types"
)

// Store records one row per backup run.
type Store struct {
	db *sql.DB
}

// Run is a recorded backup run.
type Run struct {
	ID         string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Written    map[types.EntityType]int64
	Dropped    map[types.EntityType]int64
}

// Complete reports whether the run dropped no batches.
func (r *Run) Complete() bool {
	for _, n := range r.Dropped {
		if n > 0 {
			return false
		}
	}
	return true
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		output_dir TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		written TEXT,
		dropped TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores the summary of a finished run.
func (s *Store) Record(summary *backup.Summary) error {
	written, err := json.Marshal(summary.Written)
	if err != nil {
		return err
	}
	dropped, err := json.Marshal(summary.Dropped)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, output_dir, started_at, finished_at, written, dropped) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.OutputDir,
		summary.StartedAt.UTC(), summary.FinishedAt.UTC(),
		string(written), string(dropped))
	return err
}

// List returns all recorded runs, most recent first.
func (s *Store) List() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, output_dir, started_at, finished_at, written, dropped FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var written, dropped string
		if err := rows.Scan(&run.ID, &run.OutputDir, &run.StartedAt, &run.FinishedAt, &written, &dropped); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(written), &run.Written); err != nil {
			return nil, fmt.Errorf("decoding written counts for run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(dropped), &run.Dropped); err != nil {
			return nil, fmt.Errorf("decoding dropped counts for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
