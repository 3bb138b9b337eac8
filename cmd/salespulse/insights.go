package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/salespulse/salespulse/internal/analytics"
	"github.com/salespulse/salespulse/internal/cli"
)

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights <file>",
		Short: "Generate an LLM insights narrative for a dataset",
		Long: `Compute the KPI summary for a dataset and send it to the configured LLM
provider for a narrative analysis: key insights, risks, opportunities
and recommendations.

Requires llm.api_key (or SALESPULSE_LLM_API_KEY) to be set. The summary
report is always printed, so a provider failure never loses the numbers.`,
		Args: cobra.ExactArgs(1),
		RunE: runInsights,
	}

	cmd.Flags().String("city", "", "Restrict the analysis to one city")
	_ = viper.BindPFlag("insights.city", cmd.Flags().Lookup("city"))

	return cmd
}

func runInsights(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	city := viper.GetString("insights.city")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ds, transactions, err := getDataset(ctx, store, args[0])
	if err != nil {
		return err
	}

	var filters []analytics.Filter
	if city != "" {
		if !ds.Schema.HasCity {
			return fmt.Errorf("dataset %s has no city column; --city cannot be used", ds.Path)
		}
		filters = append(filters, analytics.FilterCity(city))
	}

	summary := analytics.Aggregate(transactions, ds.Schema, filters...)
	fmt.Println(analytics.FormatSummary(summary))

	generator, err := newInsightsGenerator()
	if err != nil {
		return err
	}
	if generator == nil {
		return fmt.Errorf("no LLM provider configured; set llm.api_key or SALESPULSE_LLM_API_KEY")
	}

	fmt.Println()
	fmt.Println(cli.FormatTitle("AI Analysis"))

	response, err := generator.Generate(ctx, summary)
	if err != nil {
		// The summary above already printed, so surface the failure
		// without discarding the run.
		fmt.Println(cli.FormatError(fmt.Sprintf("insights generation failed: %v", err)))
		return nil
	}

	fmt.Println(response.Text)
	return nil
}
