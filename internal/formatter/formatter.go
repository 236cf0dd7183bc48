package formatter

import (
	"fmt"

	"github.com/channelops/taskhealth/internal/monitor"
)

// Formatter defines the interface for report rendering.
type Formatter interface {
	Format(report *monitor.Report) ([]byte, error)
}

// Options control rendering shared across formats.
type Options struct {
	// Color enables ANSI styling in the terminal format.
	Color bool
	// MaxGroups caps error groups shown per category; zero means all.
	MaxGroups int
}

// New returns the formatter for a format name.
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "text", "":
		return NewTerminal(opts), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(opts), nil
	case "html":
		return NewHTML(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
