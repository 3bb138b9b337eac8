package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/llm"
	"github.com/salespulse/salespulse/internal/model"
)

type fakeGenerator struct {
	response llm.InsightsResponse
	err      error
	reports  []string
}

func (f *fakeGenerator) GenerateFromReport(_ context.Context, reportText string) (llm.InsightsResponse, error) {
	f.reports = append(f.reports, reportText)
	return f.response, f.err
}

func testConfig(generator InsightsGenerator) Config {
	mk := func(date string, revenue float64, product, city string) model.Transaction {
		d, _ := time.Parse("2006-01-02", date)
		return model.Transaction{
			Date: d, Quantity: 1, Revenue: revenue,
			Product: product, City: city,
			PeriodKey: model.PeriodKeyFor(d),
		}
	}

	return Config{
		Generator: generator,
		Dataset: model.Dataset{
			Path:   "/data/sales.csv",
			Schema: model.Schema{HasProduct: true, HasCity: true},
		},
		Transactions: []model.Transaction{
			mk("2024-01-15", 30, "A", "Porto"),
			mk("2024-01-20", 20, "B", "Lisbon"),
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelComputesUnfilteredSummary(t *testing.T) {
	m := NewModel(testConfig(nil))

	assert.Equal(t, 2, m.summary.TotalTransactions)
	assert.InDelta(t, 50.0, m.summary.TotalRevenue, 1e-9)
	assert.Equal(t, []string{"All", "Lisbon", "Porto"}, m.cities)
	assert.Equal(t, "", m.selectedCity())
}

func TestCityCyclingReaggregates(t *testing.T) {
	m := NewModel(testConfig(nil))

	next, _ := m.Update(keyMsg("l"))
	m = next.(Model)
	assert.Equal(t, "Lisbon", m.selectedCity())
	assert.Equal(t, 1, m.summary.TotalTransactions)
	assert.InDelta(t, 20.0, m.summary.TotalRevenue, 1e-9)

	next, _ = m.Update(keyMsg("l"))
	m = next.(Model)
	assert.Equal(t, "Porto", m.selectedCity())

	// Wraps back around to All.
	next, _ = m.Update(keyMsg("l"))
	m = next.(Model)
	assert.Equal(t, "", m.selectedCity())
	assert.Equal(t, 2, m.summary.TotalTransactions)
}

func TestResetFilter(t *testing.T) {
	m := NewModel(testConfig(nil))

	next, _ := m.Update(keyMsg("l"))
	m = next.(Model)
	require.NotEqual(t, "", m.selectedCity())

	next, _ = m.Update(keyMsg("r"))
	m = next.(Model)
	assert.Equal(t, "", m.selectedCity())
}

func TestNoCityColumnDisablesFilter(t *testing.T) {
	cfg := testConfig(nil)
	cfg.Dataset.Schema.HasCity = false

	m := NewModel(cfg)
	assert.Empty(t, m.cities)

	next, _ := m.Update(keyMsg("l"))
	m = next.(Model)
	assert.Equal(t, "", m.selectedCity())
	assert.Contains(t, m.View(), "filtering disabled")
}

func TestInsightsFlow(t *testing.T) {
	gen := &fakeGenerator{response: llm.InsightsResponse{Text: "insight text"}}
	m := NewModel(testConfig(gen))

	next, cmd := m.Update(keyMsg("i"))
	m = next.(Model)
	assert.Equal(t, StateGenerating, m.state)
	require.NotNil(t, cmd)

	// Drain the batched commands looking for the generation result.
	var result insightsResultMsg
	found := drainForResult(t, cmd, &result)
	require.True(t, found, "expected an insightsResultMsg from the batch")

	require.Len(t, gen.reports, 1)
	assert.Contains(t, gen.reports[0], "=== High-Level Sales Summary ===")

	next, _ = m.Update(result)
	m = next.(Model)
	assert.Equal(t, StateBrowsing, m.state)
	assert.Equal(t, "insight text", m.insights)
	assert.Contains(t, m.View(), "insight text")
}

func TestInsightsFailureShownInline(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("api unreachable")}
	m := NewModel(testConfig(gen))

	next, cmd := m.Update(keyMsg("i"))
	m = next.(Model)

	var result insightsResultMsg
	require.True(t, drainForResult(t, cmd, &result))
	require.Error(t, result.err)

	next, _ = m.Update(result)
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "Insights failed")
	// Dashboard state is intact after the failure.
	assert.Equal(t, 2, m.summary.TotalTransactions)
}

func TestInsightsDisabledWithoutGenerator(t *testing.T) {
	m := NewModel(testConfig(nil))

	next, cmd := m.Update(keyMsg("i"))
	m = next.(Model)
	assert.Equal(t, StateBrowsing, m.state)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no LLM provider configured")
}

func TestQuit(t *testing.T) {
	m := NewModel(testConfig(nil))

	next, cmd := m.Update(keyMsg("q"))
	m = next.(Model)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
}

func TestViewShowsKPIs(t *testing.T) {
	m := NewModel(testConfig(nil))
	m.width = 120

	view := m.View()
	assert.Contains(t, view, "$50.00")
	assert.Contains(t, view, "Top Products by Revenue")
	assert.Contains(t, view, "Monthly Revenue")
}

// drainForResult executes a command tree until an insightsResultMsg shows
// up or the tree is exhausted.
func drainForResult(t *testing.T, cmd tea.Cmd, out *insightsResultMsg) bool {
	t.Helper()
	if cmd == nil {
		return false
	}

	switch msg := cmd().(type) {
	case insightsResultMsg:
		*out = msg
		return true
	case tea.BatchMsg:
		for _, sub := range msg {
			if drainForResult(t, sub, out) {
				return true
			}
		}
	}
	return false
}
