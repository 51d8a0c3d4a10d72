// Package planner turns validated matches into filesystem actions. All
// collision checking happens here, across the whole batch, before any file
// is touched.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"dialogdetective/internal/engine"
	"dialogdetective/internal/services"
	"dialogdetective/internal/textutil"
	"dialogdetective/internal/videos"
)

// Mode selects what the executor will do with a planned action.
type Mode string

const (
	ModeDryRun Mode = "dry-run"
	ModeRename Mode = "rename"
	ModeCopy   Mode = "copy"
)

// ParseMode validates a mode string from configuration.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeDryRun, ModeRename, ModeCopy:
		return Mode(raw), nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "planner", "mode",
			fmt.Sprintf("unknown mode %q (expected dry-run, rename, or copy)", raw), nil)
	}
}

// Item pairs a video file with its match outcome.
type Item struct {
	File  videos.File
	Match *engine.Match
}

// PlannedAction is one filesystem operation the executor may apply.
type PlannedAction struct {
	Source videos.File
	Target string
	Mode   Mode
}

// SkippedFile records a file the planner produced no action for.
type SkippedFile struct {
	Source videos.File
	Reason string
}

// Plan is the planner's output for one batch.
type Plan struct {
	Actions []PlannedAction
	Skipped []SkippedFile
}

// ConflictError reports two or more sources rendering to the same target.
// Planning fails as a whole; nothing is mutated.
type ConflictError struct {
	Target  string
	Sources []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("target %q claimed by multiple sources: %v", e.Target, e.Sources)
}

// Options configures planning.
type Options struct {
	Show      string
	Template  *Template
	Mode      Mode
	OutputDir string
	// Overwrite permits targets that already exist with content.
	Overwrite bool
}

// Build renders target names for every resolved item and checks the batch
// for collisions. Unresolved items become skipped records; they never abort
// planning.
func Build(items []Item, opts Options) (*Plan, error) {
	if opts.Template == nil {
		return nil, services.Wrap(services.ErrConfiguration, "planner", "build", "template required", nil)
	}
	if opts.Mode == ModeCopy && opts.OutputDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "planner", "build", "copy mode requires an output directory", nil)
	}

	plan := &Plan{}
	claimed := make(map[string]string)
	var conflicts []*ConflictError
	for _, item := range items {
		if item.Match == nil || !item.Match.Resolved {
			reason := "no match result"
			if item.Match != nil {
				reason = item.Match.Reason
			}
			plan.Skipped = append(plan.Skipped, SkippedFile{Source: item.File, Reason: reason})
			continue
		}

		name := opts.Template.Render(Fields{
			Show:    textutil.SanitizeFileName(opts.Show),
			Season:  item.Match.Episode.Season,
			Episode: item.Match.Episode.Episode,
			Title:   textutil.SanitizeFileName(item.Match.Episode.Title),
			Ext:     item.File.Ext,
		})
		target := targetPath(item.File, name, opts)

		if prior, taken := claimed[target]; taken {
			conflicts = append(conflicts, &ConflictError{
				Target:  target,
				Sources: []string{prior, item.File.Path},
			})
			continue
		}
		claimed[target] = item.File.Path
		plan.Actions = append(plan.Actions, PlannedAction{Source: item.File, Target: target, Mode: opts.Mode})
	}

	if len(conflicts) > 0 {
		return nil, conflicts[0]
	}
	if (opts.Mode == ModeCopy || opts.Mode == ModeRename) && !opts.Overwrite {
		if err := checkExistingTargets(plan.Actions); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func targetPath(file videos.File, name string, opts Options) string {
	switch opts.Mode {
	case ModeCopy:
		return filepath.Join(opts.OutputDir, name)
	default:
		return filepath.Join(filepath.Dir(file.Path), name)
	}
}

// checkExistingTargets refuses targets that already hold content, so neither
// a rename nor a copy can clobber a file that was there before the batch. A
// file that already carries its target name is a noop, not a clobber, and an
// empty placeholder file does not block.
func checkExistingTargets(actions []PlannedAction) error {
	var blocked []string
	for _, action := range actions {
		if action.Target == action.Source.Path {
			continue
		}
		info, err := os.Stat(action.Target)
		if err != nil {
			continue
		}
		if info.Size() > 0 {
			blocked = append(blocked, action.Target)
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	sort.Strings(blocked)
	return services.Wrap(services.ErrValidation, "planner", "build",
		fmt.Sprintf("targets already exist (use overwrite to replace): %v", blocked), nil)
}
