package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dialogdetective/internal/catalog"
	"dialogdetective/internal/config"
	"dialogdetective/internal/engine"
	"dialogdetective/internal/executor"
	"dialogdetective/internal/language"
	"dialogdetective/internal/planner"
	"dialogdetective/internal/transcripts"
)

func newCatalogProvider(cfg *config.Config, logger *slog.Logger) (catalog.Provider, error) {
	client, err := catalog.NewTVMazeClient(cfg.Catalog.BaseURL)
	if err != nil {
		return nil, err
	}
	return catalog.NewCachedProvider(client, cfg.Paths.CacheDir,
		time.Duration(cfg.Catalog.TTLHours)*time.Hour, logger)
}

// printReport writes the per-file outcome table. Unresolved files and
// per-file errors appear here; only batch-level failures change the exit
// status.
func printReport(cmd *cobra.Command, results []engine.FileResult, plan *planner.Plan, actionResults []executor.ActionResult) {
	actionBySource := make(map[string]executor.ActionResult, len(actionResults))
	for _, ar := range actionResults {
		actionBySource[ar.Action.Source.Path] = ar
	}
	skippedBySource := make(map[string]string, len(plan.Skipped))
	for _, skipped := range plan.Skipped {
		skippedBySource[skipped.Source.Path] = skipped.Reason
	}
	targetBySource := make(map[string]string, len(plan.Actions))
	for _, action := range plan.Actions {
		targetBySource[action.Source.Path] = action.Target
	}

	rows := make([][]string, 0, len(results))
	var resolved, unresolved, errored int
	for _, result := range results {
		row := reportRow(result, targetBySource, skippedBySource, actionBySource)
		rows = append(rows, row)
		switch row[1] {
		case "resolved":
			resolved++
		case "unresolved":
			unresolved++
		default:
			errored++
		}
	}

	out := cmd.OutOrStdout()
	headers := []string{"File", "Status", "Episode", "Dialog", "Detail"}
	if isTerminal(out) {
		fmt.Fprintln(out, renderTable(headers, rows, nil))
	} else {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
	}
	fmt.Fprintf(out, "%d resolved, %d unresolved, %d errored\n", resolved, unresolved, errored)
}

func reportRow(result engine.FileResult, targets, skipped map[string]string, actions map[string]executor.ActionResult) []string {
	name := result.File.Base()
	dialog := describeDialog(result.Transcript)
	if result.Err != nil {
		return []string{name, "error", "", dialog, result.Err.Error()}
	}
	match := result.Match
	if match == nil || !match.Resolved {
		reason := skipped[result.File.Path]
		if reason == "" && match != nil {
			reason = match.Reason
		}
		return []string{name, "unresolved", "", dialog, reason}
	}

	episode := fmt.Sprintf("%s %s", match.Episode.Ref(), match.Episode.Title)
	detail := targets[result.File.Path]
	if ar, ok := actions[result.File.Path]; ok && ar.Err != nil {
		detail = fmt.Sprintf("%s (failed: %v)", detail, ar.Err)
	}
	var notes []string
	if match.FromCache {
		notes = append(notes, "cached")
	}
	if match.CacheWriteErr != nil {
		notes = append(notes, fmt.Sprintf("cache write failed: %v", match.CacheWriteErr))
	}
	if len(notes) > 0 {
		detail = fmt.Sprintf("%s [%s]", detail, strings.Join(notes, ", "))
	}
	return []string{name, "resolved", episode, dialog, detail}
}

// describeDialog summarizes the recovered dialog track, e.g. "English, 42m".
func describeDialog(transcript transcripts.Transcript) string {
	if transcript.Empty() {
		return ""
	}
	name := language.DisplayName(transcript.Language)
	if transcript.Duration <= 0 {
		return name
	}
	return fmt.Sprintf("%s, %s", name, transcript.Duration.Round(time.Second))
}
