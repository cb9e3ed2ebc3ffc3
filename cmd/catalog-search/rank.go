package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/concierge/backend/config"
	"github.com/concierge/backend/internal/domain"
	"github.com/concierge/backend/internal/infrastructure/catalog"
	"github.com/concierge/backend/internal/observability"
	"github.com/concierge/backend/internal/usecase"
)

// rankOptions are the resolved inputs of one ranking run
type rankOptions struct {
	Query  string
	Tastes string
	TopK   int
	JSON   bool
}

// loadEnvironment reads the config file and the catalog named by the flags
func loadEnvironment(cmd *cobra.Command) (*config.Config, *domain.Catalog, zerolog.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: cmd.ErrOrStderr(),
	})

	path := cfg.Catalog.Path
	if flagPath, _ := cmd.Flags().GetString("catalog"); flagPath != "" {
		path = flagPath
	}

	items, err := catalog.NewLoader(logger).Load(path)
	if err != nil {
		return nil, nil, logger, err
	}
	return cfg, items, logger, nil
}

// newRanker builds the ranking service from config
func newRanker(cfg *config.Config, logger zerolog.Logger) *usecase.RankingService {
	return usecase.NewRankingService(usecase.RankConfig{
		NameWeight:         cfg.Search.NameWeight,
		DescriptionWeight:  cfg.Search.DescriptionWeight,
		StopWords:          cfg.Search.StopWords,
		TriggerPhrases:     cfg.Search.Signature.TriggerPhrases,
		SignatureSubstring: cfg.Search.Signature.Substring,
		SignatureBonus:     cfg.Search.Signature.Bonus,
		SnippetLength:      cfg.Search.SnippetLength,
		DefaultTopK:        cfg.Search.TopK,
	}, logger)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, items, logger, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	opts := rankOptions{Tastes: cfg.Profile.Tastes, TopK: cfg.Search.TopK}
	opts.Query, _ = cmd.Flags().GetString("query")
	opts.JSON, _ = cmd.Flags().GetBool("json")
	if cmd.Flags().Changed("tastes") {
		opts.Tastes, _ = cmd.Flags().GetString("tastes")
	}
	if cmd.Flags().Changed("top-k") {
		opts.TopK, _ = cmd.Flags().GetInt("top-k")
	}

	matches := newRanker(cfg, logger).Search(items, opts.Query, opts.Tastes, opts.TopK)
	return writeMatches(cmd.OutOrStdout(), matches, opts.JSON)
}

// writeMatches prints matches as an aligned table or as JSON
func writeMatches(w io.Writer, matches []domain.ScoredMatch, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		_, err := color.New(color.FgYellow).Fprintln(w, "no matches")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tSERVICE\tSTORE\tITEM\tPRICE")
	for i, m := range matches {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%v\n", i+1, m.Score, m.Service, m.Store, m.ItemName, m.Price)
	}
	return tw.Flush()
}
