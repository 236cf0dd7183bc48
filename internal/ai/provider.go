// Package ai turns a finished health report into an operator-facing
// summary using an OpenAI-compatible chat completion endpoint.
package ai

import "context"

// CompletionRequest carries one completion call to a provider.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse is the provider's answer.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider performs text completion.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
