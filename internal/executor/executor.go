// Package executor applies planned actions. It trusts the planner's
// collision guarantees and only handles the mechanics of each operation.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dialogdetective/internal/fileutil"
	"dialogdetective/internal/logging"
	"dialogdetective/internal/planner"
)

// ActionResult records the outcome of one applied action.
type ActionResult struct {
	Action planner.PlannedAction
	Err    error
}

// Executor applies a plan's actions sequentially.
type Executor struct {
	logger *slog.Logger
}

// New creates an executor.
func New(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{logger: logger}
}

// Apply runs every action and collects per-action outcomes. A failed action
// does not stop the rest; cancellation stops before the next mutation.
func (e *Executor) Apply(ctx context.Context, actions []planner.PlannedAction) []ActionResult {
	results := make([]ActionResult, 0, len(actions))
	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			results = append(results, ActionResult{Action: action, Err: err})
			continue
		}
		results = append(results, ActionResult{Action: action, Err: e.apply(action)})
	}
	return results
}

func (e *Executor) apply(action planner.PlannedAction) error {
	log := e.logger.With(
		logging.String("source", action.Source.Path),
		logging.String("target", action.Target),
	)
	switch action.Mode {
	case planner.ModeDryRun:
		log.Info("dry run, would process file")
		return nil
	case planner.ModeRename:
		if action.Target == action.Source.Path {
			log.Debug("source already at target")
			return nil
		}
		if err := os.Rename(action.Source.Path, action.Target); err != nil {
			return fmt.Errorf("rename: %w", err)
		}
		log.Info("file renamed")
		return nil
	case planner.ModeCopy:
		if err := os.MkdirAll(filepath.Dir(action.Target), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := fileutil.CopyFileVerified(action.Source.Path, action.Target); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		log.Info("file copied")
		return nil
	default:
		return fmt.Errorf("unknown action mode %q", action.Mode)
	}
}
