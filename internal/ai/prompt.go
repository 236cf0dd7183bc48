package ai

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/channelops/taskhealth/internal/monitor"
)

const systemPrompt = "You are an operations assistant for a marketplace " +
	"integration platform. You review task failure reports and produce " +
	"short, actionable summaries for the on-call engineer. Focus on root " +
	"causes and the order in which issues should be handled."

// maxGroupsPerIssue bounds prompt size for very noisy categories.
const maxGroupsPerIssue = 3

// BuildReportPrompt renders the report into a completion prompt.
func BuildReportPrompt(report *monitor.Report) *promptfmt.Prompt {
	pb := promptfmt.New().
		System(systemPrompt).
		User("Summarize the following task health report. Name the most "+
			"urgent problems first, suggest a likely cause for each, and "+
			"keep the whole summary under 200 words.\n\n%s",
			describeReport(report))

	return pb.Build()
}

func describeReport(report *monitor.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Checked at: %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Total failing records: %d\n", report.TotalRecords)

	for _, sev := range []monitor.Severity{
		monitor.SeverityCritical,
		monitor.SeverityHigh,
		monitor.SeverityMedium,
	} {
		issues := report.Bucket(sev)
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s issues:\n", sev)
		for _, issue := range issues {
			describeIssue(&b, issue)
		}
	}

	if !report.HasProblems() {
		b.WriteString("\nNo issues above OK severity.\n")
	}
	return b.String()
}

func describeIssue(b *strings.Builder, issue *monitor.Issue) {
	fmt.Fprintf(b, "- %s: %d records", issue.Name, issue.Count)
	if issue.Description != "" {
		fmt.Fprintf(b, " (%s)", issue.Description)
	}
	if !issue.OldestLastRun.IsZero() {
		fmt.Fprintf(b, ", oldest last run %s", issue.OldestLastRun.Format("2006-01-02"))
	}
	if len(issue.SellerIDs) > 0 {
		fmt.Fprintf(b, ", sellers affected: %s", strings.Join(issue.SellerIDs, ", "))
	}
	b.WriteString("\n")

	for i, group := range issue.Groups {
		if i >= maxGroupsPerIssue {
			fmt.Fprintf(b, "    ... and %d more error patterns\n", len(issue.Groups)-i)
			break
		}
		fmt.Fprintf(b, "    %dx %s: %s\n", group.Count, group.Exception, group.Pattern)
	}
}
