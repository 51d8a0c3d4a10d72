// Package logging wraps log/slog with the attribute helpers, context-derived
// fields, and console/json handlers used throughout the investigation
// pipeline.
package logging
