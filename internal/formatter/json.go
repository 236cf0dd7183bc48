package formatter

import (
	"encoding/json"

	"github.com/channelops/taskhealth/internal/monitor"
)

// jsonFormatter emits the report as indented JSON. The report's own
// marshaling defines the shape, so archived and printed output match.
type jsonFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(report *monitor.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
