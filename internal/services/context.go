package services

import (
	"context"
	"strings"
)

type contextKey string

const (
	runIDKey contextKey = "run_id"
	videoKey contextKey = "video"
	stageKey contextKey = "stage"
)

// WithRunID attaches a run correlation identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run correlation identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, runIDKey)
}

// WithVideo attaches the video file path currently being processed.
func WithVideo(ctx context.Context, path string) context.Context {
	path = strings.TrimSpace(path)
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, videoKey, path)
}

// VideoFromContext extracts the video file path, if present.
func VideoFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, videoKey)
}

// WithStage attaches the pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext extracts the pipeline stage name, if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, stageKey)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
