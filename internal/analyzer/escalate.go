package analyzer

import (
	"time"

	"github.com/channelops/taskhealth/internal/monitor"
)

// EscalationWindow shifts classified severities one level up while
// active, e.g. right after a deployment or during off-hours coverage.
// It is a transform composed after classification, never part of the
// rule chain itself.
type EscalationWindow struct {
	Start time.Time
	End   time.Time
}

// Active reports whether the window covers the given instant.
func (w EscalationWindow) Active(at time.Time) bool {
	if w.Start.IsZero() || w.End.IsZero() {
		return false
	}
	return !at.Before(w.Start) && at.Before(w.End)
}

// Apply escalates the severity one level when the window is active at
// the given instant, and returns it unchanged otherwise.
func (w EscalationWindow) Apply(s monitor.Severity, at time.Time) monitor.Severity {
	if !w.Active(at) {
		return s
	}
	return EscalateOneLevel(s)
}

// EscalateOneLevel bumps a severity to the next more urgent level.
// CRITICAL stays CRITICAL.
func EscalateOneLevel(s monitor.Severity) monitor.Severity {
	if s < monitor.SeverityCritical {
		return s + 1
	}
	return s
}
