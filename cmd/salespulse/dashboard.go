package main

import (
	"github.com/spf13/cobra"

	"github.com/salespulse/salespulse/internal/tui"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard <file>",
		Short: "Open the interactive KPI dashboard",
		Long: `Open the terminal dashboard for a dataset: KPI boxes, top-product and
monthly revenue charts, and a city filter cycled with h/l. When an LLM
provider is configured, pressing i generates an insights narrative for
the currently filtered view.`,
		Args: cobra.ExactArgs(1),
		RunE: runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ds, transactions, err := getDataset(ctx, store, args[0])
	if err != nil {
		return err
	}

	cfg := tui.Config{
		Dataset:      ds,
		Transactions: transactions,
	}

	generator, err := newInsightsGenerator()
	if err != nil {
		return err
	}
	if generator != nil {
		cfg.Generator = generator
	}

	return tui.Run(ctx, cfg)
}
