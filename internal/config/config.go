package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Catalog contains configuration for the episode metadata provider.
type Catalog struct {
	BaseURL  string `toml:"base_url"`
	TTLHours int    `toml:"ttl_hours"`
}

// Transcriber contains configuration for the external speech-to-text
// collaborators (ffmpeg for audio extraction, a whisper CLI for inference).
type Transcriber struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	WhisperBinary  string `toml:"whisper_binary"`
	ModelPath      string `toml:"model_path"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Matcher contains configuration for the AI matcher backend.
type Matcher struct {
	Backend string `toml:"backend"` // "claude" or "gemini"
	Model   string `toml:"model"`   // optional model identifier passed to the CLI
	// TimeoutSeconds bounds one backend invocation.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RetryAttempts is the number of additional attempts after a transient
	// failure (timeout or process failure). Malformed responses never retry.
	RetryAttempts int `toml:"retry_attempts"`
	// MaxTranscriptChars truncates the transcript section of the prompt.
	MaxTranscriptChars int `toml:"max_transcript_chars"`
}

// Library contains configuration for rename/copy output.
type Library struct {
	Template          string `toml:"template"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dialogdetective.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories
//   - Catalog: episode metadata provider (TVMaze) settings
//   - Transcriber: external ffmpeg/whisper collaborators
//   - Matcher: AI backend selection, timeout and retry bounds
//   - Library: filename template and overwrite policy
//   - Workers: bounded concurrency for per-file matching
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Catalog     Catalog     `toml:"catalog"`
	Transcriber Transcriber `toml:"transcriber"`
	Matcher     Matcher     `toml:"matcher"`
	Library     Library     `toml:"library"`
	Workers     int         `toml:"workers"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dialogdetective/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found; defaults apply otherwise.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dialogdetective.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Transcriber.ModelPath, err = expandPath(c.Transcriber.ModelPath); err != nil {
		return err
	}
	c.Matcher.Backend = strings.ToLower(strings.TrimSpace(c.Matcher.Backend))
	c.Matcher.Model = strings.TrimSpace(c.Matcher.Model)
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
