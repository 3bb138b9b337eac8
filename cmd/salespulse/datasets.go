package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salespulse/salespulse/internal/cli"
	"github.com/salespulse/salespulse/internal/model"
)

func datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List cached datasets",
		Long: `List every dataset in the local cache with its row count, load time and
content fingerprint. A dataset is reloaded automatically when its source
file changes, so the fingerprint shown here always matches the file as
of the last load.`,
		RunE: runDatasets,
	}
}

func runDatasets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	datasets, err := store.ListDatasets(ctx)
	if err != nil {
		return err
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets loaded yet. Run 'salespulse load <file>' first.")
		return nil
	}

	fmt.Println(cli.FormatTitle("Cached Datasets"))
	for _, ds := range datasets {
		fmt.Printf("  %s\n", ds.Path)
		fmt.Printf("    rows: %d  groupings: %s  loaded: %s  fingerprint: %.12s\n",
			ds.RowCount, groupingsLabel(ds.Schema), ds.LoadedAt.Local().Format("2006-01-02 15:04"), ds.Fingerprint)
	}

	return nil
}

// groupingsLabel names the optional breakdowns a cached dataset supports.
func groupingsLabel(schema model.Schema) string {
	var groupings []string
	if schema.HasProduct {
		groupings = append(groupings, "product")
	}
	if schema.HasCity {
		groupings = append(groupings, "city")
	}
	if len(groupings) == 0 {
		return "none"
	}
	return strings.Join(groupings, ", ")
}
