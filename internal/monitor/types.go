package monitor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity is the classifier verdict for a category. Higher values are
// more urgent so verdicts can be compared and escalated directly.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityOK:
		return "OK"
	default:
		return "UNKNOWN"
	}
}

// Severities lists all levels from most to least urgent, the order
// reports render buckets in.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityOK}
}

// ParseSeverity parses a string severity, defaulting to OK.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(s) {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	default:
		return SeverityOK
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("severity must be a string: %w", err)
	}
	*s = ParseSeverity(str)
	return nil
}

// FailureRecord is one stuck or failed task row from a monitoring
// snapshot. The Context payload arrives either as a JSON-encoded string
// or as an already-structured object; Context resolves that once at
// decode time.
type FailureRecord struct {
	ID        int64     `json:"id"`
	LastRun   time.Time `json:"last_run"`
	Exception string    `json:"exception"`
	Message   string    `json:"error_message"`
	SellerID  FlexID    `json:"seller_id,omitempty"`
	Context   Context   `json:"data,omitempty"`
	Category  string    `json:"-"`
}

// ErrorGroup is a cluster of failure records sharing an exception kind
// and a canonical message pattern.
type ErrorGroup struct {
	Key             string         `json:"group_key"`
	Exception       string         `json:"exception"`
	Pattern         string         `json:"pattern"`
	OriginalMessage string         `json:"original_message"`
	Count           int            `json:"count"`
	SellerIDs       []string       `json:"seller_ids"`
	RecordIDs       []int64        `json:"record_ids"`
	Exemplar        *FailureRecord `json:"example,omitempty"`
}

// CategoryState aggregates one category's records after grouping.
type CategoryState struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Count         int           `json:"count"`
	OldestLastRun time.Time     `json:"oldest_last_run"`
	Groups        []*ErrorGroup `json:"error_groups"`
	SellerIDs     []string      `json:"affected_sellers"`
}

// Issue is a classified category state.
type Issue struct {
	CategoryState
	Severity Severity `json:"severity"`
}

// Report is the final output of a health check run: issues partitioned
// into severity buckets, each sorted by descending count.
type Report struct {
	GeneratedAt  time.Time `json:"generated_at"`
	RunID        string    `json:"run_id,omitempty"`
	TotalRecords int       `json:"total_records"`
	Critical     []*Issue  `json:"critical"`
	High         []*Issue  `json:"high"`
	Medium       []*Issue  `json:"medium"`
	OK           []*Issue  `json:"ok"`

	// Optional narrative produced by the AI collaborator; plain data so
	// renderers can show it without the analysis core knowing about it.
	AISummary string `json:"ai_summary,omitempty"`
	AIModel   string `json:"ai_model,omitempty"`
}

// Bucket returns the issue slice for a severity level.
func (r *Report) Bucket(s Severity) []*Issue {
	switch s {
	case SeverityCritical:
		return r.Critical
	case SeverityHigh:
		return r.High
	case SeverityMedium:
		return r.Medium
	default:
		return r.OK
	}
}

// TotalIssues counts issues across all buckets.
func (r *Report) TotalIssues() int {
	return len(r.Critical) + len(r.High) + len(r.Medium) + len(r.OK)
}

// HasProblems reports whether anything above OK was found.
func (r *Report) HasProblems() bool {
	return len(r.Critical)+len(r.High)+len(r.Medium) > 0
}
