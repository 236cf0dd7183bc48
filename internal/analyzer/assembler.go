package analyzer

import (
	"sort"

	"github.com/channelops/taskhealth/internal/monitor"
)

// BuildIssue joins a category state with its classified severity.
func BuildIssue(state *monitor.CategoryState, severity monitor.Severity) *monitor.Issue {
	return &monitor.Issue{
		CategoryState: *state,
		Severity:      severity,
	}
}

// PartitionIssues distributes issues into the four severity buckets of a
// report, each sorted by descending count with ties broken by category
// name so output never depends on input or completion order. Categories
// with zero records are dropped unless includeZeroStates is set.
func PartitionIssues(issues []*monitor.Issue, includeZeroStates bool) *monitor.Report {
	report := &monitor.Report{
		Critical: []*monitor.Issue{},
		High:     []*monitor.Issue{},
		Medium:   []*monitor.Issue{},
		OK:       []*monitor.Issue{},
	}

	for _, issue := range issues {
		if issue == nil {
			continue
		}
		if issue.Count == 0 && !includeZeroStates {
			continue
		}
		report.TotalRecords += issue.Count

		switch issue.Severity {
		case monitor.SeverityCritical:
			report.Critical = append(report.Critical, issue)
		case monitor.SeverityHigh:
			report.High = append(report.High, issue)
		case monitor.SeverityMedium:
			report.Medium = append(report.Medium, issue)
		default:
			report.OK = append(report.OK, issue)
		}
	}

	sortBucket(report.Critical)
	sortBucket(report.High)
	sortBucket(report.Medium)
	sortBucket(report.OK)

	return report
}

func sortBucket(bucket []*monitor.Issue) {
	sort.Slice(bucket, func(i, j int) bool {
		if bucket[i].Count != bucket[j].Count {
			return bucket[i].Count > bucket[j].Count
		}
		return bucket[i].Name < bucket[j].Name
	})
}
