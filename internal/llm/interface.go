package llm

import (
	"context"

	"applytrack/internal/llm/providers"
)

// GenerateRequest is one completion call
type GenerateRequest = providers.Request

// LLMProvider defines the interface for LLM providers
type LLMProvider interface {
	// Generate sends the request and returns the raw text reply
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// IsHealthy checks if the LLM provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}
