// Package source reads failure snapshots from disk or stdin and writes
// run artifacts back out. Snapshots are the JSON export of the task
// backend: a map of category name to result block.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/channelops/taskhealth/internal/monitor"
)

// RunMeta identifies one analysis run.
type RunMeta struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
}

// NewRunMeta stamps a fresh run identifier for the given input source.
func NewRunMeta(sourcePath string) RunMeta {
	if sourcePath == "" {
		sourcePath = "stdin"
	}
	return RunMeta{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Source:    sourcePath,
	}
}

// ReadSnapshot decodes a snapshot from the reader. Category blocks are
// normalized so record counts and category back-references are
// consistent regardless of what the producer wrote.
func ReadSnapshot(r io.Reader) (monitor.Snapshot, error) {
	var snapshot monitor.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	snapshot.Normalize()
	return snapshot, nil
}

// LoadSnapshot reads a snapshot from the named file, or from stdin when
// path is empty or "-".
func LoadSnapshot(path string) (monitor.Snapshot, error) {
	if path == "" || path == "-" {
		return ReadSnapshot(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	snapshot, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return snapshot, nil
}

// SaveReport writes the report as indented JSON into dir using a
// timestamped file name, returning the path written.
func SaveReport(dir string, report *monitor.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	name := fmt.Sprintf("results_%s.json", report.GeneratedAt.Format("2006-01-02_15-04"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// SaveSnapshot archives the raw snapshot next to the report so a run
// can be replayed later.
func SaveSnapshot(dir string, snapshot monitor.Snapshot, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%s.json", at.Format("2006-01-02_15-04"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}
