package formatter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/channelops/taskhealth/internal/monitor"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// htmlFormatter renders a standalone HTML page suitable for mailing or
// publishing to a dashboard.
type htmlFormatter struct {
	tmpl      *template.Template
	maxGroups int
}

// NewHTML creates an HTML formatter.
func NewHTML(opts Options) Formatter {
	tmpl := template.Must(template.New("report.html.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/report.html.tmpl"))
	return &htmlFormatter{tmpl: tmpl, maxGroups: opts.MaxGroups}
}

type htmlBucket struct {
	Title  string
	Class  string
	Issues []*monitor.Issue
}

type htmlData struct {
	Report  *monitor.Report
	Buckets []htmlBucket
}

func (f *htmlFormatter) Format(report *monitor.Report) ([]byte, error) {
	data := htmlData{
		Report: report,
		Buckets: []htmlBucket{
			{Title: "Critical", Class: "critical", Issues: f.capGroups(report.Critical)},
			{Title: "High", Class: "high", Issues: f.capGroups(report.High)},
			{Title: "Medium", Class: "medium", Issues: f.capGroups(report.Medium)},
			{Title: "OK", Class: "ok", Issues: f.capGroups(report.OK)},
		},
	}

	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering html report: %w", err)
	}
	return buf.Bytes(), nil
}

// capGroups returns issues with their group lists truncated for
// display. The originals are left untouched.
func (f *htmlFormatter) capGroups(issues []*monitor.Issue) []*monitor.Issue {
	if f.maxGroups <= 0 {
		return issues
	}
	capped := make([]*monitor.Issue, len(issues))
	for i, issue := range issues {
		if len(issue.Groups) <= f.maxGroups {
			capped[i] = issue
			continue
		}
		clone := *issue
		clone.Groups = issue.Groups[:f.maxGroups]
		capped[i] = &clone
	}
	return capped
}
