package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/channelops/taskhealth/internal/logger"
	"github.com/channelops/taskhealth/internal/monitor"
)

// Summarizer attaches an AI-written summary to finished reports.
type Summarizer struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
	log         *logger.Logger
}

// NewSummarizer wraps a provider with the model settings to use.
func NewSummarizer(provider Provider, model string, maxTokens int, temperature float64) *Summarizer {
	return &Summarizer{
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		log:         logger.New("ai"),
	}
}

// Summarize fills in the report's AI fields. The report itself is the
// source of truth; a failed summary leaves it untouched and returns the
// error so callers can degrade gracefully.
func (s *Summarizer) Summarize(ctx context.Context, report *monitor.Report) error {
	prompt := BuildReportPrompt(report)

	s.log.Debugf("requesting summary from %s model %s", s.provider.Name(), s.model)
	resp, err := s.provider.Complete(ctx, &CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
		Model:        s.model,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		return fmt.Errorf("ai summary: %w", err)
	}

	report.AISummary = strings.TrimSpace(resp.Content)
	report.AIModel = resp.Model
	s.log.Debugf("summary complete, %d tokens used", resp.TokensUsed)
	return nil
}
