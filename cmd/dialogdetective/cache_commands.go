package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dialogdetective/internal/matchcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the match result cache",
	}
	cmd.AddCommand(newCacheListCommand(ctx))
	cmd.AddCommand(newCacheRemoveCommand(ctx))
	cmd.AddCommand(newCacheClearCommand(ctx))
	return cmd
}

func withMatchCache(ctx *commandContext, fn func(*matchcache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := matchcache.Open(cfg.Paths.CacheDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached match results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMatchCache(ctx, func(store *matchcache.Store) error {
				results, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "Cache is empty")
					return nil
				}

				rows := make([][]string, 0, len(results))
				for _, result := range results {
					outcome := "unresolved"
					detail := result.Reason
					if result.Resolved {
						outcome = fmt.Sprintf("S%02dE%02d", result.Season, result.Episode)
						detail = result.Title
					}
					rows = append(rows, []string{
						result.Fingerprint[:12],
						result.Backend,
						result.Model,
						outcome,
						detail,
						result.CreatedAt.Format("2006-01-02 15:04"),
					})
				}
				headers := []string{"Key", "Backend", "Model", "Outcome", "Detail", "Created"}
				if isTerminal(out) {
					fmt.Fprintln(out, renderTable(headers, rows, nil))
				} else {
					for _, row := range rows {
						fmt.Fprintln(out, strings.Join(row, "\t"))
					}
				}
				return nil
			})
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <fingerprint>",
		Short: "Remove one cached result by fingerprint (or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMatchCache(ctx, func(store *matchcache.Store) error {
				fingerprint, err := resolveFingerprint(cmd, store, args[0])
				if err != nil {
					return err
				}
				removed, err := store.Remove(cmd.Context(), fingerprint)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "No cache entry for %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", fingerprint[:12])
				return nil
			})
		},
	}
}

// resolveFingerprint accepts either a full fingerprint or a unique prefix.
func resolveFingerprint(cmd *cobra.Command, store *matchcache.Store, arg string) (string, error) {
	if len(arg) == 64 {
		return arg, nil
	}
	results, err := store.List(cmd.Context())
	if err != nil {
		return "", err
	}
	var matches []string
	for _, result := range results {
		if strings.HasPrefix(result.Fingerprint, arg) {
			matches = append(matches, result.Fingerprint)
		}
	}
	switch len(matches) {
	case 0:
		return arg, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("fingerprint prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached match result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMatchCache(ctx, func(store *matchcache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
				return nil
			})
		},
	}
}
