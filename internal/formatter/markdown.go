package formatter

import (
	"fmt"
	"strings"

	"github.com/channelops/taskhealth/internal/monitor"
)

// markdownFormatter renders the report as Markdown for tickets and
// chat posts.
type markdownFormatter struct {
	maxGroups int
}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown(opts Options) Formatter {
	return &markdownFormatter{maxGroups: opts.MaxGroups}
}

func (f *markdownFormatter) Format(report *monitor.Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Task Health Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	f.writeSummaryTable(&b, report)

	for _, sev := range []monitor.Severity{
		monitor.SeverityCritical,
		monitor.SeverityHigh,
		monitor.SeverityMedium,
		monitor.SeverityOK,
	} {
		f.writeBucket(&b, sev, report.Bucket(sev))
	}

	if !report.HasProblems() {
		b.WriteString("All monitored tasks healthy.\n\n")
	}

	if report.AISummary != "" {
		b.WriteString("## AI Analysis\n\n")
		if report.AIModel != "" {
			fmt.Fprintf(&b, "_Model: %s_\n\n", report.AIModel)
		}
		b.WriteString(report.AISummary + "\n")
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, report *monitor.Report) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Failing Records | %d |\n", report.TotalRecords)
	fmt.Fprintf(b, "| Critical | %d |\n", len(report.Critical))
	fmt.Fprintf(b, "| High | %d |\n", len(report.High))
	fmt.Fprintf(b, "| Medium | %d |\n", len(report.Medium))
	fmt.Fprintf(b, "| OK | %d |\n\n", len(report.OK))
}

func (f *markdownFormatter) writeBucket(b *strings.Builder, sev monitor.Severity, issues []*monitor.Issue) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintf(b, "## %s\n\n", sev)

	for _, issue := range issues {
		fmt.Fprintf(b, "### %s (%d records)\n\n", issue.Name, issue.Count)
		if issue.Description != "" {
			b.WriteString(issue.Description + "\n\n")
		}
		if !issue.OldestLastRun.IsZero() {
			fmt.Fprintf(b, "- Oldest last run: %s\n", issue.OldestLastRun.Format("2006-01-02 15:04"))
		}
		if len(issue.SellerIDs) > 0 {
			fmt.Fprintf(b, "- Affected sellers: %s\n", strings.Join(issue.SellerIDs, ", "))
		}
		b.WriteString("\n")

		f.writeGroups(b, issue)
	}
}

func (f *markdownFormatter) writeGroups(b *strings.Builder, issue *monitor.Issue) {
	groups := issue.Groups
	if len(groups) == 0 {
		return
	}
	truncated := 0
	if f.maxGroups > 0 && len(groups) > f.maxGroups {
		truncated = len(groups) - f.maxGroups
		groups = groups[:f.maxGroups]
	}

	b.WriteString("| Count | Exception | Pattern |\n")
	b.WriteString("|-------|-----------|--------|\n")
	for _, g := range groups {
		fmt.Fprintf(b, "| %d | %s | %s |\n", g.Count, g.Exception, escapePipes(g.Pattern))
	}
	if truncated > 0 {
		fmt.Fprintf(b, "\n_... and %d more error patterns_\n", truncated)
	}
	b.WriteString("\n")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
