package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/go-termfmt"

	"github.com/channelops/taskhealth/internal/monitor"
)

// terminalFormatter renders the report for terminal display using
// go-termfmt trees with lipgloss severity styling.
type terminalFormatter struct {
	opts      *termfmt.TerminalOptions
	color     bool
	maxGroups int
}

// NewTerminal creates a terminal formatter with optional color support.
func NewTerminal(opts Options) Formatter {
	termOpts := termfmt.DefaultOptions()
	termOpts.Color = opts.Color
	termOpts.Emoji = true
	return &terminalFormatter{
		opts:      termOpts,
		color:     opts.Color,
		maxGroups: opts.MaxGroups,
	}
}

var severityStyles = map[monitor.Severity]lipgloss.Style{
	monitor.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	monitor.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	monitor.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	monitor.SeverityOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
}

func (f *terminalFormatter) Format(report *monitor.Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, report)
	f.writeSummary(&b, report)

	for _, sev := range []monitor.Severity{
		monitor.SeverityCritical,
		monitor.SeverityHigh,
		monitor.SeverityMedium,
		monitor.SeverityOK,
	} {
		f.writeBucket(&b, sev, report.Bucket(sev))
	}

	if !report.HasProblems() {
		b.WriteString(f.styled(monitor.SeverityOK, "All monitored tasks healthy.") + "\n")
	}

	f.writeAISummary(&b, report)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, report *monitor.Report) {
	header := fmt.Sprintf("Task Health Report — %s",
		report.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("╔" + strings.Repeat("═", len([]rune(header))+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", len([]rune(header))+2) + "╝\n\n")
}

func (f *terminalFormatter) writeSummary(b *strings.Builder, report *monitor.Report) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")

	items := []termfmt.TreeItem{
		{Label: "Failing Records", Value: fmt.Sprintf("%d", report.TotalRecords)},
		{Label: "Critical", Value: fmt.Sprintf("%d", len(report.Critical))},
		{Label: "High", Value: fmt.Sprintf("%d", len(report.High))},
		{Label: "Medium", Value: fmt.Sprintf("%d", len(report.Medium))},
		{Label: "OK", Value: fmt.Sprintf("%d", len(report.OK)), Last: true},
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeBucket(b *strings.Builder, sev monitor.Severity, issues []*monitor.Issue) {
	if len(issues) == 0 {
		return
	}

	b.WriteString(f.styled(sev, fmt.Sprintf("%s %s", severityMarker(sev), sev.String())) + "\n")

	items := make([]termfmt.TreeItem, 0, len(issues))
	for i, issue := range issues {
		items = append(items, termfmt.TreeItem{
			Label:    issue.Name,
			Value:    f.issueSummary(issue),
			Children: f.groupItems(issue),
			Last:     i == len(issues)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) issueSummary(issue *monitor.Issue) string {
	summary := fmt.Sprintf("%d records", issue.Count)
	if !issue.OldestLastRun.IsZero() {
		summary += fmt.Sprintf(", oldest %s", issue.OldestLastRun.Format("2006-01-02"))
	}
	if len(issue.SellerIDs) > 0 {
		summary += fmt.Sprintf(", sellers %s", strings.Join(issue.SellerIDs, ","))
	}
	return summary
}

func (f *terminalFormatter) groupItems(issue *monitor.Issue) []termfmt.TreeItem {
	groups := issue.Groups
	truncated := 0
	if f.maxGroups > 0 && len(groups) > f.maxGroups {
		truncated = len(groups) - f.maxGroups
		groups = groups[:f.maxGroups]
	}

	items := make([]termfmt.TreeItem, 0, len(groups)+1)
	for _, g := range groups {
		items = append(items, termfmt.TreeItem{
			Label: g.Exception,
			Value: fmt.Sprintf("%dx %s", g.Count, g.Pattern),
		})
	}
	if truncated > 0 {
		items = append(items, termfmt.TreeItem{
			Label: "...",
			Value: fmt.Sprintf("%d more error patterns", truncated),
		})
	}
	if len(items) > 0 {
		items[len(items)-1].Last = true
	}
	return items
}

func (f *terminalFormatter) writeAISummary(b *strings.Builder, report *monitor.Report) {
	if report.AISummary == "" {
		return
	}

	symbol := termfmt.GetEmoji("ai", f.opts)
	if symbol == "" {
		symbol = "🤖"
	}
	fmt.Fprintf(b, "%s AI Analysis", symbol)
	if report.AIModel != "" {
		fmt.Fprintf(b, " (%s)", report.AIModel)
	}
	b.WriteString("\n" + strings.Repeat("─", 50) + "\n")
	b.WriteString(report.AISummary + "\n")
}

func (f *terminalFormatter) styled(sev monitor.Severity, text string) string {
	if !f.color {
		return text
	}
	return severityStyles[sev].Render(text)
}

func severityMarker(sev monitor.Severity) string {
	switch sev {
	case monitor.SeverityCritical:
		return "🔴"
	case monitor.SeverityHigh:
		return "🟠"
	case monitor.SeverityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}
