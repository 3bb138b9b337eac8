// Package llm provides clients for text-generation providers used to
// turn KPI reports into narrative analysis.
package llm

import (
	"context"
)

// Client defines the interface for LLM providers.
type Client interface {
	GenerateInsights(ctx context.Context, prompt string) (InsightsResponse, error)
}

// InsightsResponse contains the provider's generated narrative.
type InsightsResponse struct {
	Text  string
	Model string
}

// Config holds provider-agnostic client configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}
