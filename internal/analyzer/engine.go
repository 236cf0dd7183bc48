package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/channelops/taskhealth/internal/monitor"
)

// Engine turns a snapshot of failure records into a classified report.
// It is a pure transformation: no I/O, no state kept between runs. The
// only failure mode after construction is context cancellation.
type Engine struct {
	classifier        *Classifier
	escalation        EscalationWindow
	includeZeroStates bool
	concurrency       int
	now               func() time.Time
}

// NewEngine builds an engine for the given policy. Invalid policies are
// rejected here, before any record is processed.
func NewEngine(policy Policy) (*Engine, error) {
	classifier, err := NewClassifier(policy)
	if err != nil {
		return nil, err
	}

	return &Engine{
		classifier:  classifier,
		concurrency: runtime.NumCPU(),
		now:         time.Now,
	}, nil
}

// WithEscalation composes an escalation window after classification.
func (e *Engine) WithEscalation(window EscalationWindow) *Engine {
	e.escalation = window
	return e
}

// WithZeroStates makes zero-record categories surface as explicit OK
// entries instead of being omitted.
func (e *Engine) WithZeroStates() *Engine {
	e.includeZeroStates = true
	return e
}

// WithClock overrides the time source, used by tests and replays so age
// computations are reproducible.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// WithConcurrency caps how many categories are analyzed in parallel.
func (e *Engine) WithConcurrency(n int) *Engine {
	if n > 0 {
		e.concurrency = n
	}
	return e
}

// Analyze groups, classifies, and assembles every category in the
// snapshot. Categories are independent, so they are processed in
// parallel; results are collected positionally so bucket contents and
// ordering depend only on counts and category names, never on
// completion order.
func (e *Engine) Analyze(ctx context.Context, snapshot monitor.Snapshot) (*monitor.Report, error) {
	now := e.now()
	names := snapshot.Names()
	issues := make([]*monitor.Issue, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, name := range names {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			issues[i] = e.analyzeCategory(name, snapshot[name], now)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis canceled: %w", err)
	}

	report := PartitionIssues(issues, e.includeZeroStates)
	report.GeneratedAt = now
	return report, nil
}

// analyzeCategory runs the full per-category pipeline: grouping,
// classification, escalation, assembly.
func (e *Engine) analyzeCategory(name string, result *monitor.CategoryResult, now time.Time) *monitor.Issue {
	if result == nil {
		result = &monitor.CategoryResult{}
	}

	groups := GroupRecords(result.Records)

	state := &monitor.CategoryState{
		Name:        name,
		Description: result.Description,
		Count:       len(result.Records),
		Groups:      groups,
		SellerIDs:   unionSellerIDs(groups),
	}
	state.OldestLastRun = oldestLastRun(result.Records)

	facts := CategoryFacts{
		Category:  name,
		Count:     state.Count,
		HasOldest: !state.OldestLastRun.IsZero(),
	}
	if facts.HasOldest {
		facts.OldestAge = now.Sub(state.OldestLastRun)
	}

	severity := e.classifier.Classify(facts)
	severity = e.escalation.Apply(severity, now)

	return BuildIssue(state, severity)
}

func oldestLastRun(records []*monitor.FailureRecord) time.Time {
	var oldest time.Time
	for _, rec := range records {
		if rec == nil || rec.LastRun.IsZero() {
			continue
		}
		if oldest.IsZero() || rec.LastRun.Before(oldest) {
			oldest = rec.LastRun
		}
	}
	return oldest
}

func unionSellerIDs(groups []*monitor.ErrorGroup) []string {
	set := make(map[string]struct{})
	for _, g := range groups {
		for _, id := range g.SellerIDs {
			set[id] = struct{}{}
		}
	}
	return sortedSet(set)
}
