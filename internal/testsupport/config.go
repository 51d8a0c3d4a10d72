// Package testsupport provides helpers for constructing isolated test
// fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"dialogdetective/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBackend overrides the matcher backend on the test config.
func WithBackend(backend, model string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matcher.Backend = backend
		cfg.Matcher.Model = model
	}
}

// WithWorkers overrides the worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workers = n
	}
}
