package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/channelops/taskhealth/internal/monitor"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(at time.Time) *monitor.Report {
	return &monitor.Report{
		GeneratedAt:  at,
		TotalRecords: 14,
		Critical: []*monitor.Issue{{
			CategoryState: monitor.CategoryState{Name: "POLLING", Count: 11},
			Severity:      monitor.SeverityCritical,
		}},
		Medium: []*monitor.Issue{{
			CategoryState: monitor.CategoryState{Name: "STATS", Count: 3},
			Severity:      monitor.SeverityMedium,
		}},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 14, 21, 0, 0, 0, time.UTC)

	id, err := store.SaveRun(ctx, "run-abc", sampleReport(at))
	if err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	report, err := store.LoadReport(ctx, id)
	if err != nil {
		t.Fatalf("LoadReport() error: %v", err)
	}
	if report.TotalRecords != 14 {
		t.Errorf("total records = %d, want 14", report.TotalRecords)
	}
	if len(report.Critical) != 1 || report.Critical[0].Name != "POLLING" {
		t.Errorf("critical bucket lost in archive: %+v", report.Critical)
	}
	if report.Critical[0].Severity != monitor.SeverityCritical {
		t.Errorf("severity lost in archive: %s", report.Critical[0].Severity)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		report := sampleReport(base.Add(time.Duration(i) * time.Hour))
		if _, err := store.SaveRun(ctx, fmt.Sprintf("run-%d", i), report); err != nil {
			t.Fatalf("SaveRun() error: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-4" || runs[2].RunID != "run-2" {
		t.Errorf("unexpected ordering: %q ... %q", runs[0].RunID, runs[2].RunID)
	}
	if runs[0].Critical != 1 || runs[0].Medium != 1 {
		t.Errorf("summary counts wrong: %+v", runs[0])
	}
}

func TestLoadReportMissing(t *testing.T) {
	store := testStore(t)
	if _, err := store.LoadReport(context.Background(), 999); err == nil {
		t.Errorf("expected error for unknown run id")
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 14, 21, 0, 0, 0, time.UTC)

	if _, err := store.SaveRun(ctx, "run-dup", sampleReport(at)); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}
	if _, err := store.SaveRun(ctx, "run-dup", sampleReport(at)); err == nil {
		t.Errorf("expected unique constraint violation")
	}
}

func TestPrune(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		report := sampleReport(base.AddDate(0, 0, i*10))
		if _, err := store.SaveRun(ctx, fmt.Sprintf("run-%d", i), report); err != nil {
			t.Fatalf("SaveRun() error: %v", err)
		}
	}

	removed, err := store.Prune(ctx, base.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 pruned runs, got %d", removed)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 remaining runs, got %d", len(runs))
	}
}
