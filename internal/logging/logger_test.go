package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"dialogdetective/internal/services"
)

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("cache hit", String(FieldVideo, "ep1.mkv"))

	out := buf.String()
	if !strings.Contains(out, "cache hit") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "video=ep1.mkv") {
		t.Errorf("output missing attr: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestComponentRendersInBrackets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	NewComponentLogger(logger, "engine").Info("started")
	if !strings.Contains(buf.String(), "[engine]") {
		t.Errorf("component not rendered: %q", buf.String())
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithVideo(ctx, "/videos/a.mkv")
	WithContext(ctx, logger).Info("processing")

	out := buf.String()
	if !strings.Contains(out, "run_id=run-1") {
		t.Errorf("missing run id: %q", out)
	}
	if !strings.Contains(out, "video=/videos/a.mkv") {
		t.Errorf("missing video path: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	// Must not panic and must report disabled at every level.
	logger := NewNop()
	logger.Error("ignored")
	if logger.Enabled(context.Background(), 0) {
		t.Error("nop logger should be disabled")
	}
}
