// Package history archives analysis runs in a local SQLite database so
// severity trends survive between invocations.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/channelops/taskhealth/internal/monitor"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL UNIQUE,
	checked_at    TIMESTAMP NOT NULL,
	total_records INTEGER NOT NULL,
	critical      INTEGER NOT NULL,
	high          INTEGER NOT NULL,
	medium        INTEGER NOT NULL,
	ok            INTEGER NOT NULL,
	report        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_checked_at ON runs(checked_at);
`

// Store persists run summaries and full reports.
type Store struct {
	db *sql.DB
}

// RunSummary is one archived run without the report payload.
type RunSummary struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	CheckedAt    time.Time `json:"checked_at"`
	TotalRecords int       `json:"total_records"`
	Critical     int       `json:"critical"`
	High         int       `json:"high"`
	Medium       int       `json:"medium"`
	OK           int       `json:"ok"`
}

// Open opens (creating if needed) the database at path. The special
// path ":memory:" keeps everything in process for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// The driver serializes access itself; a single connection avoids
	// table-lock errors on concurrent writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun archives one report under its run identifier.
func (s *Store) SaveRun(ctx context.Context, runID string, report *monitor.Report) (int64, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("encoding report: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, checked_at, total_records, critical, high, medium, ok, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		report.GeneratedAt.UTC(),
		report.TotalRecords,
		len(report.Critical),
		len(report.High),
		len(report.Medium),
		len(report.OK),
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, checked_at, total_records, critical, high, medium, ok
		FROM runs ORDER BY checked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.RunID, &r.CheckedAt, &r.TotalRecords,
			&r.Critical, &r.High, &r.Medium, &r.OK); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadReport fetches the full report archived for a run.
func (s *Store) LoadReport(ctx context.Context, id int64) (*monitor.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM runs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %d: %w", id, err)
	}

	var report monitor.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decoding archived report: %w", err)
	}
	return &report, nil
}

// Prune deletes runs older than the cutoff and reports how many were
// removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE checked_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}
