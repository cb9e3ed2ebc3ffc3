package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/concierge/backend/internal/domain"
	"github.com/concierge/backend/internal/usecase"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show how each catalog entry is classified and flattened",
	Long: `Inspect prints every catalog entry with its detected container shape
and the number of items it contributes. Entries with an unrecognized shape
contribute nothing to search results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, items, _, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		return writeInspection(cmd.OutOrStdout(), items)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of catalog-search",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "catalog-search %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

// writeInspection prints one row per entry
func writeInspection(w io.Writer, catalog *domain.Catalog) error {
	normalizer := usecase.NewCatalogNormalizer()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTORE\tSHAPE\tITEMS")
	total := 0
	for _, entry := range catalog.Entries() {
		count := len(normalizer.Collect([]domain.CatalogEntry{entry}))
		total += count
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", entry.Service, entry.StoreOrDefault(), entry.Shape, count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := color.New(color.FgGreen).Fprintf(w, "%d entries, %d items\n", catalog.Len(), total)
	return err
}
