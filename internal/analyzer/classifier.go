package analyzer

import (
	"fmt"
	"time"

	"github.com/channelops/taskhealth/internal/monitor"
)

// Policy carries every threshold and category-set membership the
// classifier consults. Nothing here is hard-coded into the decision
// logic; hosts inject a Policy so severity tuning never touches code.
type Policy struct {
	// Staleness is how long a record may go without a successful run
	// before its whole category escalates to CRITICAL.
	Staleness time.Duration

	// HighVolume is the count above which a category is CRITICAL on
	// volume alone.
	HighVolume int

	// CriticalVolume is the count at which core-critical categories turn
	// CRITICAL and everything else turns HIGH.
	CriticalVolume int

	// CoreCritical names categories whose failures block money flow:
	// polling, order creation, fulfillment, confirmations, credentials.
	CoreCritical []string

	// Elevated names categories that warrant HIGH at lower counts.
	Elevated []string
}

// DefaultPolicy mirrors the thresholds the monitor has always run with.
func DefaultPolicy() Policy {
	return Policy{
		Staleness:      15 * 24 * time.Hour,
		HighVolume:     10,
		CriticalVolume: 5,
		CoreCritical:   []string{"POLLING", "CREATION", "WMS", "LIVERPOOL_CONFIRM", "TOKEN"},
		Elevated:       []string{"LIVERPOOL_CONFIRM", "WMS", "ODOO"},
	}
}

// Validate rejects policies that would misclassify every category.
// Hosts must call this before any record is processed.
func (p Policy) Validate() error {
	if p.Staleness <= 0 {
		return fmt.Errorf("staleness threshold must be positive, got %s", p.Staleness)
	}
	if p.CriticalVolume < 1 {
		return fmt.Errorf("critical volume threshold must be at least 1, got %d", p.CriticalVolume)
	}
	if p.HighVolume < 1 {
		return fmt.Errorf("high volume threshold must be at least 1, got %d", p.HighVolume)
	}
	if p.CriticalVolume > p.HighVolume {
		return fmt.Errorf("critical volume threshold %d exceeds high volume threshold %d", p.CriticalVolume, p.HighVolume)
	}
	return nil
}

// CategoryFacts is the aggregate state the classifier judges: total
// count, age of the oldest record, and the category name. Severity is a
// pure function of these three inputs.
type CategoryFacts struct {
	Category  string
	Count     int
	OldestAge time.Duration
	HasOldest bool
}

// rule is one (predicate, outcome) pair in the ordered chain.
type rule struct {
	name     string
	severity monitor.Severity
	matches  func(CategoryFacts) bool
}

// Classifier assigns a severity to category facts by evaluating an
// ordered rule list; the first matching rule wins. The rules are built
// once from an injected Policy.
type Classifier struct {
	rules []rule
}

// NewClassifier validates the policy and compiles the rule chain.
func NewClassifier(policy Policy) (*Classifier, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	coreCritical := toSet(policy.CoreCritical)
	elevated := toSet(policy.Elevated)

	// Order is load-bearing: the core-critical rule must run before the
	// generic volume rule, or categories at exactly the critical-volume
	// boundary swap between CRITICAL and HIGH.
	rules := []rule{
		{
			name:     "stale-records",
			severity: monitor.SeverityCritical,
			matches: func(f CategoryFacts) bool {
				return f.HasOldest && f.OldestAge > policy.Staleness
			},
		},
		{
			name:     "high-volume",
			severity: monitor.SeverityCritical,
			matches: func(f CategoryFacts) bool {
				return f.Count > policy.HighVolume
			},
		},
		{
			name:     "core-critical-volume",
			severity: monitor.SeverityCritical,
			matches: func(f CategoryFacts) bool {
				_, ok := coreCritical[f.Category]
				return ok && f.Count >= policy.CriticalVolume
			},
		},
		{
			name:     "critical-volume",
			severity: monitor.SeverityHigh,
			matches: func(f CategoryFacts) bool {
				return f.Count >= policy.CriticalVolume
			},
		},
		{
			name:     "elevated-category",
			severity: monitor.SeverityHigh,
			matches: func(f CategoryFacts) bool {
				_, ok := elevated[f.Category]
				return ok && f.Count >= 2
			},
		},
		{
			name:     "repeated-failures",
			severity: monitor.SeverityMedium,
			matches: func(f CategoryFacts) bool {
				return f.Count >= 2
			},
		},
	}

	return &Classifier{rules: rules}, nil
}

// Classify returns the severity for the given facts. It is total: facts
// matching no rule are OK.
func (c *Classifier) Classify(facts CategoryFacts) monitor.Severity {
	for _, r := range c.rules {
		if r.matches(facts) {
			return r.severity
		}
	}
	return monitor.SeverityOK
}

// Explain returns the name of the rule that decided the given facts,
// or "default-ok".
func (c *Classifier) Explain(facts CategoryFacts) string {
	for _, r := range c.rules {
		if r.matches(facts) {
			return r.name
		}
	}
	return "default-ok"
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
