package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dialogdetective/internal/logging"
	"dialogdetective/internal/planner"
	"dialogdetective/internal/videos"
)

func seedFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return path
}

func action(source, target string, mode planner.Mode) planner.PlannedAction {
	return planner.PlannedAction{
		Source: videos.File{Path: source, Ext: "mkv"},
		Target: target,
		Mode:   mode,
	}
}

func TestApplyDryRunMutatesNothing(t *testing.T) {
	dir := t.TempDir()
	source := seedFile(t, dir, "a.mkv", "payload")
	target := filepath.Join(dir, "renamed.mkv")

	results := New(logging.NewNop()).Apply(context.Background(), []planner.PlannedAction{
		action(source, target, planner.ModeDryRun),
	})
	if results[0].Err != nil {
		t.Fatalf("dry run: %v", results[0].Err)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source gone after dry run: %v", err)
	}
	if _, err := os.Stat(target); err == nil {
		t.Fatal("dry run created the target")
	}
}

func TestApplyRename(t *testing.T) {
	dir := t.TempDir()
	source := seedFile(t, dir, "a.mkv", "payload")
	target := filepath.Join(dir, "X - S01E01 - Pilot.mkv")

	results := New(logging.NewNop()).Apply(context.Background(), []planner.PlannedAction{
		action(source, target, planner.ModeRename),
	})
	if results[0].Err != nil {
		t.Fatalf("rename: %v", results[0].Err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatal("source still present after rename")
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "payload" {
		t.Fatalf("target content wrong: %q err=%v", data, err)
	}
}

func TestApplyCopyPreservesSource(t *testing.T) {
	dir := t.TempDir()
	source := seedFile(t, dir, "a.mkv", "payload")
	target := filepath.Join(dir, "sorted", "X - S01E01 - Pilot.mkv")

	results := New(logging.NewNop()).Apply(context.Background(), []planner.PlannedAction{
		action(source, target, planner.ModeCopy),
	})
	if results[0].Err != nil {
		t.Fatalf("copy: %v", results[0].Err)
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source gone after copy: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "payload" {
		t.Fatalf("target content wrong: %q err=%v", data, err)
	}
}

func TestApplyCollectsPerActionErrors(t *testing.T) {
	dir := t.TempDir()
	good := seedFile(t, dir, "good.mkv", "payload")

	results := New(logging.NewNop()).Apply(context.Background(), []planner.PlannedAction{
		action(filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "t1.mkv"), planner.ModeRename),
		action(good, filepath.Join(dir, "t2.mkv"), planner.ModeRename),
	})
	if results[0].Err == nil {
		t.Fatal("expected error for missing source")
	}
	if results[1].Err != nil {
		t.Fatalf("second action should still run: %v", results[1].Err)
	}
	if _, err := os.Stat(filepath.Join(dir, "t2.mkv")); err != nil {
		t.Fatalf("second rename missing: %v", err)
	}
}

func TestApplyCancelledContext(t *testing.T) {
	dir := t.TempDir()
	source := seedFile(t, dir, "a.mkv", "payload")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New(logging.NewNop()).Apply(ctx, []planner.PlannedAction{
		action(source, filepath.Join(dir, "t.mkv"), planner.ModeRename),
	})
	if results[0].Err == nil {
		t.Fatal("expected cancellation error")
	}
	if _, err := os.Stat(source); err != nil {
		t.Fatal("cancelled apply must not mutate")
	}
}

func TestApplyRenameNoopWhenAlreadyNamed(t *testing.T) {
	dir := t.TempDir()
	source := seedFile(t, dir, "X - S01E01 - Pilot.mkv", "payload")

	results := New(logging.NewNop()).Apply(context.Background(), []planner.PlannedAction{
		action(source, source, planner.ModeRename),
	})
	if results[0].Err != nil {
		t.Fatalf("noop rename: %v", results[0].Err)
	}
}
