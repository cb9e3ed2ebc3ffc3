// Package main is the entry point for the catalog-search CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd ranks the catalog for a query without calling the assistant.
var rootCmd = &cobra.Command{
	Use:   "catalog-search",
	Short: "Rank catalog items for a query offline",
	Long: `catalog-search loads a catalog document, flattens it into
(service, store, item) triples and ranks them for a query and a taste
profile with the same scorer the server uses. No language model is called.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional, same as for the server
		_ = godotenv.Load()

		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
	},
	RunE: runRank,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "catalog document (default: catalog.path from config)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.Flags().StringP("query", "q", "", "query to rank the catalog for")
	rootCmd.Flags().String("tastes", "", "taste profile (default: profile.tastes from config)")
	rootCmd.Flags().IntP("top-k", "k", 0, "maximum number of matches (default: search.top_k from config)")
	rootCmd.Flags().Bool("json", false, "output results as JSON")
	_ = rootCmd.MarkFlagRequired("query")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
