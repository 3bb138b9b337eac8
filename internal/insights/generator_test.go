package insights

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/analytics"
	"github.com/salespulse/salespulse/internal/common"
	"github.com/salespulse/salespulse/internal/llm"
	"github.com/salespulse/salespulse/internal/model"
)

// stubClient records prompts and returns canned responses.
type stubClient struct {
	response  llm.InsightsResponse
	err       error
	prompts   []string
	failTimes int
}

func (s *stubClient) GenerateInsights(_ context.Context, prompt string) (llm.InsightsResponse, error) {
	s.prompts = append(s.prompts, prompt)
	if s.failTimes > 0 {
		s.failTimes--
		return llm.InsightsResponse{}, fmt.Errorf("transient failure")
	}
	if s.err != nil {
		return llm.InsightsResponse{}, s.err
	}
	return s.response, nil
}

func fastRetry() common.RetryOptions {
	return common.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestGeneratorEmbedsReportVerbatim(t *testing.T) {
	stub := &stubClient{response: llm.InsightsResponse{Text: "insightful words"}}
	g, err := NewGenerator(stub)
	require.NoError(t, err)
	g.retry = fastRetry()

	summary := model.KPISummary{
		TotalRevenue:      50,
		TotalTransactions: 2,
		AvgOrderValue:     25,
		TotalItemsSold:    5,
		TopProducts:       []model.RevenueEntry{{Key: "A", Revenue: 30}, {Key: "B", Revenue: 20}},
		RevenueByPeriod:   []model.RevenueEntry{{Key: "2024-01", Revenue: 50}},
	}

	result, err := g.Generate(context.Background(), summary)
	require.NoError(t, err)
	assert.Equal(t, "insightful words", result.Text)

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], analytics.FormatSummary(summary))
	assert.Contains(t, stub.prompts[0], "5 Key Insights")
	assert.Contains(t, stub.prompts[0], "3 Potential Risks")
	assert.Contains(t, stub.prompts[0], "5 Actionable Recommendations")
}

func TestGeneratorRetriesTransientFailures(t *testing.T) {
	stub := &stubClient{
		failTimes: 2,
		response:  llm.InsightsResponse{Text: "eventually fine"},
	}
	g, err := NewGenerator(stub)
	require.NoError(t, err)
	g.retry = fastRetry()

	result, err := g.Generate(context.Background(), model.KPISummary{})
	require.NoError(t, err)
	assert.Equal(t, "eventually fine", result.Text)
	assert.Len(t, stub.prompts, 3)
}

func TestGeneratorReportsFailure(t *testing.T) {
	stub := &stubClient{err: errors.New("api down")}
	g, err := NewGenerator(stub)
	require.NoError(t, err)
	g.retry = fastRetry()

	_, err = g.Generate(context.Background(), model.KPISummary{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInsightsFailed))
}

func TestNewGeneratorRequiresClient(t *testing.T) {
	_, err := NewGenerator(nil)
	require.Error(t, err)
}
