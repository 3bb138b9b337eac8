package insights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salespulse/salespulse/internal/analytics"
	"github.com/salespulse/salespulse/internal/common"
	"github.com/salespulse/salespulse/internal/llm"
	"github.com/salespulse/salespulse/internal/model"
)

// Generator produces narrative analysis from KPI summaries.
type Generator struct {
	client  llm.Client
	prompts *PromptBuilder
	retry   common.RetryOptions
}

// NewGenerator creates a Generator backed by the given LLM client.
func NewGenerator(client llm.Client) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:  client,
		prompts: prompts,
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     15 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// Generate formats the summary, wraps it in the analysis prompt and asks
// the provider for a narrative. Failures here are never fatal to callers:
// they surface as an error message next to an otherwise intact dashboard.
func (g *Generator) Generate(ctx context.Context, summary model.KPISummary) (llm.InsightsResponse, error) {
	return g.GenerateFromReport(ctx, analytics.FormatSummary(summary))
}

// GenerateFromReport runs the narrative request for an already-rendered
// report. The report text is passed through to the prompt unmodified.
func (g *Generator) GenerateFromReport(ctx context.Context, reportText string) (llm.InsightsResponse, error) {
	prompt, err := g.prompts.Build(reportText)
	if err != nil {
		return llm.InsightsResponse{}, fmt.Errorf("%w: %v", common.ErrInsightsFailed, err)
	}

	var response llm.InsightsResponse
	err = common.WithRetry(ctx, func() error {
		var callErr error
		response, callErr = g.client.GenerateInsights(ctx, prompt)
		return callErr
	}, g.retry)
	if err != nil {
		return llm.InsightsResponse{}, fmt.Errorf("%w: %v", common.ErrInsightsFailed, err)
	}

	slog.Debug("Generated insights",
		"model", response.Model,
		"prompt_bytes", len(prompt),
		"response_bytes", len(response.Text))

	return response, nil
}
