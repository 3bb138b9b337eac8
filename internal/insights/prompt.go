// Package insights turns a formatted KPI report into a narrative analysis
// by prompting an LLM provider.
package insights

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders the analysis prompt around a KPI report.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder loads the embedded prompt template.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/insights_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse insights prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// promptData is the template input.
type promptData struct {
	SummaryText string
}

// Build renders the prompt. The report text is embedded unmodified so the
// request payload stays reproducible for a given KPI summary.
func (pb *PromptBuilder) Build(summaryText string) (string, error) {
	var buf bytes.Buffer
	if err := pb.tmpl.Execute(&buf, promptData{SummaryText: summaryText}); err != nil {
		return "", fmt.Errorf("failed to render insights prompt: %w", err)
	}
	return buf.String(), nil
}
