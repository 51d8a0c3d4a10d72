package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dialogdetective/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var seasons []int

	cmd := &cobra.Command{
		Use:   "catalog <show>",
		Short: "Show the episode catalog for a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			provider, err := newCatalogProvider(cfg, logger)
			if err != nil {
				return err
			}
			series, err := provider.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			episodes := catalog.Filter(series.Episodes, catalog.NewSeasonFilter(seasons...))
			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				rows = append(rows, []string{ep.Ref(), ep.Title, ep.AirDate, truncateSummary(ep.Summary)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d episodes)\n", series.Name, len(episodes))
			headers := []string{"Episode", "Title", "Aired", "Summary"}
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(headers, rows, nil))
			} else {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&seasons, "season", nil, "Restrict listing to these seasons (repeatable)")
	return cmd
}

func truncateSummary(summary string) string {
	const limit = 60
	runes := []rune(summary)
	if len(runes) <= limit {
		return summary
	}
	return string(runes[:limit]) + "..."
}
