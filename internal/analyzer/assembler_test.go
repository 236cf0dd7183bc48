package analyzer

import (
	"testing"

	"github.com/channelops/taskhealth/internal/monitor"
)

func issue(name string, count int, sev monitor.Severity) *monitor.Issue {
	return &monitor.Issue{
		CategoryState: monitor.CategoryState{Name: name, Count: count},
		Severity:      sev,
	}
}

func TestPartitionIssuesBuckets(t *testing.T) {
	issues := []*monitor.Issue{
		issue("POLLING", 12, monitor.SeverityCritical),
		issue("STATS", 6, monitor.SeverityHigh),
		issue("FILES", 2, monitor.SeverityMedium),
		issue("TOKEN", 1, monitor.SeverityOK),
	}

	report := PartitionIssues(issues, false)

	if len(report.Critical) != 1 || report.Critical[0].Name != "POLLING" {
		t.Errorf("unexpected critical bucket: %+v", report.Critical)
	}
	if len(report.High) != 1 || report.High[0].Name != "STATS" {
		t.Errorf("unexpected high bucket: %+v", report.High)
	}
	if len(report.Medium) != 1 || report.Medium[0].Name != "FILES" {
		t.Errorf("unexpected medium bucket: %+v", report.Medium)
	}
	if len(report.OK) != 1 || report.OK[0].Name != "TOKEN" {
		t.Errorf("unexpected ok bucket: %+v", report.OK)
	}
	if report.TotalRecords != 21 {
		t.Errorf("expected 21 total records, got %d", report.TotalRecords)
	}
}

func TestPartitionIssuesSortsByCount(t *testing.T) {
	issues := []*monitor.Issue{
		issue("SMALL", 3, monitor.SeverityMedium),
		issue("BIG", 4, monitor.SeverityMedium),
		issue("ALSO_SMALL", 3, monitor.SeverityMedium),
	}

	report := PartitionIssues(issues, false)
	if len(report.Medium) != 3 {
		t.Fatalf("expected 3 medium issues, got %d", len(report.Medium))
	}

	if report.Medium[0].Name != "BIG" {
		t.Errorf("largest count should come first, got %q", report.Medium[0].Name)
	}
	// Ties fall back to category name so ordering never depends on
	// completion order.
	if report.Medium[1].Name != "ALSO_SMALL" || report.Medium[2].Name != "SMALL" {
		t.Errorf("ties should be ordered by name, got %q then %q",
			report.Medium[1].Name, report.Medium[2].Name)
	}
}

func TestPartitionIssuesOmitsZeroStates(t *testing.T) {
	issues := []*monitor.Issue{
		issue("EMPTY", 0, monitor.SeverityOK),
		issue("BUSY", 3, monitor.SeverityMedium),
	}

	report := PartitionIssues(issues, false)
	if report.TotalIssues() != 1 {
		t.Errorf("zero-record category should be omitted, got %d issues", report.TotalIssues())
	}

	withZero := PartitionIssues(issues, true)
	if len(withZero.OK) != 1 || withZero.OK[0].Name != "EMPTY" {
		t.Errorf("zero-record category should surface when requested: %+v", withZero.OK)
	}
}
