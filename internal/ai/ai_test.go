package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/channelops/taskhealth/internal/monitor"
)

func sampleReport() *monitor.Report {
	return &monitor.Report{
		GeneratedAt:  time.Date(2026, 1, 14, 21, 0, 0, 0, time.UTC),
		TotalRecords: 13,
		Critical: []*monitor.Issue{{
			CategoryState: monitor.CategoryState{
				Name:          "POLLING",
				Description:   "Marketplace polling tasks stuck",
				Count:         11,
				OldestLastRun: time.Date(2025, 12, 28, 8, 0, 0, 0, time.UTC),
				SellerIDs:     []string{"42", "80"},
				Groups: []*monitor.ErrorGroup{{
					Exception: "RuntimeException",
					Pattern:   "poll failed for order {ID}",
					Count:     11,
				}},
			},
			Severity: monitor.SeverityCritical,
		}},
		Medium: []*monitor.Issue{{
			CategoryState: monitor.CategoryState{Name: "STATS", Count: 2},
			Severity:      monitor.SeverityMedium,
		}},
	}
}

func TestBuildReportPrompt(t *testing.T) {
	prompt := BuildReportPrompt(sampleReport())

	if prompt.SystemPrompt == "" {
		t.Errorf("system prompt must be set")
	}

	text := prompt.String()
	for _, want := range []string{
		"POLLING",
		"11 records",
		"poll failed for order {ID}",
		"sellers affected: 42, 80",
		"CRITICAL issues:",
		"MEDIUM issues:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
}

func TestSummarize(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"message":       map[string]string{"role": "assistant", "content": "  Fix POLLING first.  "},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"total_tokens": 321},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(server.URL, "test-key", 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error: %v", err)
	}

	report := sampleReport()
	summarizer := NewSummarizer(provider, "gpt-4o-mini", 1500, 0.3)
	if err := summarizer.Summarize(context.Background(), report); err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	if report.AISummary != "Fix POLLING first." {
		t.Errorf("summary not trimmed and attached: %q", report.AISummary)
	}
	if report.AIModel != "gpt-4o-mini" {
		t.Errorf("model not recorded: %q", report.AIModel)
	}

	if gotReq.Model != "gpt-4o-mini" || gotReq.MaxTokens != 1500 {
		t.Errorf("request settings lost: %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages, got %+v", gotReq.Messages)
	}
}

func TestCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key", "type": "auth"},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(server.URL, "bad-key", 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error: %v", err)
	}

	_, err = provider.Complete(context.Background(), &CompletionRequest{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected server error message, got %v", err)
	}
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "m",
			"choices": []map[string]any{{
				"message": map[string]string{"role": "assistant", "content": "ok"},
			}},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(server.URL, "", 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error: %v", err)
	}

	resp, err := provider.Complete(context.Background(), &CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if resp.Content != "ok" || attempts != 2 {
		t.Errorf("expected retry then success, got %q after %d attempts", resp.Content, attempts)
	}
}

func TestNewOpenAIProviderValidation(t *testing.T) {
	if _, err := NewOpenAIProvider("", "key", time.Second); err == nil {
		t.Errorf("expected error for empty endpoint")
	}
}
