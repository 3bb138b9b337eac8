package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/salespulse/salespulse/internal/cli"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Load sales datasets into the local cache",
		Long: `Load one or more delimited sales data files, normalize them into
canonical transactions and cache them for reporting.

The file must have a header row with at least a date column, an
item-count column and a cost column (case and spacing are ignored).
Product and city columns are optional; when present they enable the
corresponding breakdowns and filters.

Examples:
  # Load a single file
  salespulse load data/online_sales.csv

  # Load everything in a directory
  salespulse load data/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLoad,
	}

	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to load")
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Loading datasets...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	loaded := 0
	totalTransactions := 0
	for _, file := range allFiles {
		ds, transactions, err := runLoadPipeline(ctx, store, file)
		if err != nil {
			fmt.Fprintln(os.Stderr)
			return err
		}
		_ = bar.Add(1)

		loaded++
		totalTransactions += len(transactions)

		if len(transactions) == 0 {
			slog.Warn("Dataset has no usable rows after normalization", "path", ds.Path)
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Loaded %d dataset(s), %d transactions cached", loaded, totalTransactions)))

	return nil
}
