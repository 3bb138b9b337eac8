package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/salespulse/salespulse/internal/analytics"
	"github.com/salespulse/salespulse/internal/cli"
	"github.com/salespulse/salespulse/internal/sheets"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print the KPI summary report for a dataset",
		Long: `Compute the KPI summary for a loaded dataset and print the plain-text
report: overall KPIs, top products, top cities (when the dataset has a
city column) and the chronological monthly revenue.

The report text is exactly what the insights command sends to the LLM
provider, so it is stable for a given dataset and filter.`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	cmd.Flags().String("city", "", "Restrict the report to one city")
	cmd.Flags().Bool("export", false, "Export the report to Google Sheets")

	_ = viper.BindPFlag("report.city", cmd.Flags().Lookup("city"))
	_ = viper.BindPFlag("report.export", cmd.Flags().Lookup("export"))

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	city := viper.GetString("report.city")
	export := viper.GetBool("report.export")

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

	if export {
		cfg, err := loadSheetsConfig()
		if err != nil {
			return err
		}

		writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
		if err != nil {
			return err
		}
		if err := writer.Write(ctx, ds, summary); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		fmt.Println(cli.FormatSuccess("Report exported to Google Sheets"))
	}

	return nil
}

// loadSheetsConfig builds the export configuration from the config file,
// falling back to SALESPULSE_SHEETS_* environment variables when no
// credentials are configured there.
func loadSheetsConfig() (sheets.Config, error) {
	cfg := sheets.DefaultConfig()
	cfg.ClientID = viper.GetString("sheets.client_id")
	cfg.ClientSecret = viper.GetString("sheets.client_secret")
	cfg.RefreshToken = viper.GetString("sheets.refresh_token")
	cfg.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	cfg.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	cfg.SpreadsheetName = viper.GetString("sheets.spreadsheet_name")

	if cfg.ServiceAccountPath == "" && (cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "") {
		if err := cfg.LoadFromEnv(); err != nil {
			return cfg, fmt.Errorf("sheets export not configured: run 'salespulse auth sheets' or set SALESPULSE_SHEETS_* variables: %w", err)
		}
	}
	if cfg.SpreadsheetName == "" {
		cfg.SpreadsheetName = "Sales KPI Report"
	}

	return cfg, nil
}
