package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// OpenAIProvider talks to any endpoint implementing the OpenAI chat
// completions API, including local gateways.
type OpenAIProvider struct {
	apiKey  string
	baseURL *url.URL
	client  *http.Client
}

// NewOpenAIProvider builds a provider for the given endpoint. An empty
// API key is allowed for keyless local gateways.
func NewOpenAIProvider(endpoint, apiKey string, timeout time.Duration) (*OpenAIProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("ai endpoint is required")
	}
	baseURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ai endpoint %q: %w", endpoint, err)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the request, retrying transient failures with
// exponential backoff.
func (p *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("completion request is required")
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding completion request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.errorFromResponse(resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding completion response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices")
	}

	return &CompletionResponse{
		Content:    chatResp.Choices[0].Message.Content,
		Model:      chatResp.Model,
		TokensUsed: chatResp.Usage.TotalTokens,
	}, nil
}

func (p *OpenAIProvider) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	const maxAttempts = 3
	endpoint := p.baseURL.JoinPath("/v1/chat/completions")

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating completion request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			if sleepErr := sleepCtx(ctx, backoff(attempt, time.Second)); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := backoff(attempt, time.Second)
			if header := resp.Header.Get("Retry-After"); header != "" {
				if seconds, err := strconv.Atoi(header); err == nil {
					delay = time.Duration(seconds) * time.Second
				}
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited")
			if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		return resp, nil
	}
	return nil, fmt.Errorf("completion failed after %d attempts: %w", maxAttempts, lastErr)
}

func (p *OpenAIProvider) errorFromResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("completion failed (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
	}
	return fmt.Errorf("completion failed with status %d", resp.StatusCode)
}

func backoff(attempt int, base time.Duration) time.Duration {
	return base << attempt
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
