// Package tui renders the interactive sales dashboard: KPI row, charts,
// a city drill-down filter and on-demand narrative insights.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/salespulse/salespulse/internal/analytics"
	"github.com/salespulse/salespulse/internal/cli"
	"github.com/salespulse/salespulse/internal/llm"
	"github.com/salespulse/salespulse/internal/model"
)

// allCities is the sentinel filter selection meaning "no filter".
const allCities = "All"

// InsightsGenerator produces a narrative for a rendered KPI report.
// Satisfied by *insights.Generator; nil disables the insights keybinding.
type InsightsGenerator interface {
	GenerateFromReport(ctx context.Context, reportText string) (llm.InsightsResponse, error)
}

// State represents what the dashboard is currently doing.
type State int

const (
	StateBrowsing State = iota
	StateGenerating
)

// Config holds the dashboard dependencies.
type Config struct {
	Generator    InsightsGenerator
	Dataset      model.Dataset
	Transactions []model.Transaction
}

// insightsResultMsg delivers the narrative call outcome to Update.
type insightsResultMsg struct {
	err  error
	text string
}

// Model holds the dashboard state.
type Model struct {
	generator    InsightsGenerator
	insightsErr  error
	dataset      model.Dataset
	transactions []model.Transaction
	cities       []string
	insights     string
	keymap       KeyMap
	summary      model.KPISummary
	spinner      spinner.Model
	cityIndex    int
	width        int
	height       int
	state        State
	quitting     bool
}

// NewModel builds the dashboard model and computes the unfiltered summary.
func NewModel(cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cli.PrimaryColor)

	m := Model{
		generator:    cfg.Generator,
		dataset:      cfg.Dataset,
		transactions: cfg.Transactions,
		keymap:       DefaultKeyMap(),
		spinner:      sp,
	}

	if cfg.Dataset.Schema.HasCity {
		m.cities = append([]string{allCities}, analytics.Cities(cfg.Transactions)...)
	}
	m.summary = m.aggregate()

	return m
}

// selectedCity returns the active filter value, or "" for no filter.
func (m Model) selectedCity() string {
	if len(m.cities) == 0 || m.cityIndex == 0 {
		return ""
	}
	return m.cities[m.cityIndex]
}

// aggregate recomputes the summary for the current filter selection.
// The base transaction set is never modified.
func (m Model) aggregate() model.KPISummary {
	if city := m.selectedCity(); city != "" {
		return analytics.Aggregate(m.transactions, m.dataset.Schema, analytics.FilterCity(city))
	}
	return analytics.Aggregate(m.transactions, m.dataset.Schema)
}

// Init starts the spinner ticker.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case insightsResultMsg:
		m.state = StateBrowsing
		m.insights = msg.text
		m.insightsErr = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.PrevCity):
		if len(m.cities) > 1 {
			m.cityIndex = (m.cityIndex - 1 + len(m.cities)) % len(m.cities)
			m.summary = m.aggregate()
		}
		return m, nil

	case key.Matches(msg, m.keymap.NextCity):
		if len(m.cities) > 1 {
			m.cityIndex = (m.cityIndex + 1) % len(m.cities)
			m.summary = m.aggregate()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		m.cityIndex = 0
		m.summary = m.aggregate()
		return m, nil

	case key.Matches(msg, m.keymap.Insights):
		if m.generator == nil || m.state == StateGenerating {
			return m, nil
		}
		m.state = StateGenerating
		m.insights = ""
		m.insightsErr = nil
		return m, tea.Batch(m.spinner.Tick, m.generateInsights())
	}

	return m, nil
}

// generateInsights runs the narrative request off the update loop. The
// report for the current filter selection is passed through unmodified.
func (m Model) generateInsights() tea.Cmd {
	generator := m.generator
	report := analytics.FormatSummary(m.summary)

	return func() tea.Msg {
		response, err := generator.GenerateFromReport(context.Background(), report)
		if err != nil {
			return insightsResultMsg{err: err}
		}
		return insightsResultMsg{text: response.Text}
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		cli.FormatTitle("Sales Insights Dashboard"),
		m.viewFilter(),
		m.viewKPIs(),
		m.viewCharts(),
		m.viewInsights(),
		cli.SubtleStyle.Render(m.helpLine()),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) viewFilter() string {
	if len(m.cities) == 0 {
		return cli.SubtleStyle.Render("No city column in dataset; filtering disabled")
	}

	parts := make([]string, 0, len(m.cities))
	for i, city := range m.cities {
		if i == m.cityIndex {
			parts = append(parts, cli.MetricValueStyle.Render("["+city+"]"))
		} else {
			parts = append(parts, cli.SubtleStyle.Render(city))
		}
	}
	return "City: " + strings.Join(parts, "  ")
}

func (m Model) viewKPIs() string {
	metric := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			cli.SubtleStyle.Render(label),
			cli.MetricValueStyle.Render(value),
		)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		cli.BoxStyle.Render(metric("Total Revenue", fmt.Sprintf("$%.2f", m.summary.TotalRevenue))),
		cli.BoxStyle.Render(metric("Transactions", fmt.Sprintf("%d", m.summary.TotalTransactions))),
		cli.BoxStyle.Render(metric("Avg Order Value", fmt.Sprintf("$%.2f", m.summary.AvgOrderValue))),
		cli.BoxStyle.Render(metric("Items Sold", fmt.Sprintf("%.0f", m.summary.TotalItemsSold))),
	)
	return row
}

func (m Model) viewCharts() string {
	chartWidth := 30
	if m.width > 100 {
		chartWidth = 40
	}

	var sections []string

	if m.summary.TopProducts != nil {
		sections = append(sections,
			cli.TitleStyle.UnsetMargins().Render("Top Products by Revenue"),
			cli.BarChart(m.summary.TopProducts, chartWidth),
		)
	}
	if m.summary.TopCities != nil && m.selectedCity() == "" {
		sections = append(sections,
			cli.TitleStyle.UnsetMargins().Render("Top Cities by Revenue"),
			cli.BarChart(m.summary.TopCities, chartWidth),
		)
	}
	sections = append(sections,
		cli.TitleStyle.UnsetMargins().Render("Monthly Revenue"),
		cli.BarChart(m.summary.RevenueByPeriod, chartWidth),
	)

	return strings.Join(sections, "\n")
}

func (m Model) viewInsights() string {
	switch {
	case m.state == StateGenerating:
		return m.spinner.View() + " Generating insights..."
	case m.insightsErr != nil:
		return cli.FormatError("Insights failed: "+m.insightsErr.Error()) + "\n" +
			cli.SubtleStyle.Render("Check your API key configuration and try again.")
	case m.insights != "":
		return cli.RenderBox(cli.RobotIcon+" AI Insights", m.insights)
	case m.generator == nil:
		return cli.SubtleStyle.Render("Insights disabled: no LLM provider configured")
	default:
		return cli.SubtleStyle.Render("Press i to generate AI insights for the current view")
	}
}

func (m Model) helpLine() string {
	bindings := []key.Binding{m.keymap.Quit}
	if len(m.cities) > 0 {
		bindings = append([]key.Binding{m.keymap.PrevCity, m.keymap.NextCity, m.keymap.Refresh}, bindings...)
	}
	if m.generator != nil {
		bindings = append([]key.Binding{m.keymap.Insights}, bindings...)
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, " • ")
}

// Run starts the dashboard program and blocks until it exits.
func Run(ctx context.Context, cfg Config) error {
	program := tea.NewProgram(
		NewModel(cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
