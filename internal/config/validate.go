package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url must be set")
	}
	if c.Catalog.TTLHours < 0 {
		return errors.New("catalog.ttl_hours must not be negative")
	}
	return nil
}

func (c *Config) validateMatcher() error {
	switch c.Matcher.Backend {
	case "claude", "gemini":
	default:
		return fmt.Errorf("matcher.backend must be \"claude\" or \"gemini\", got %q", c.Matcher.Backend)
	}
	if c.Matcher.TimeoutSeconds <= 0 {
		return errors.New("matcher.timeout_seconds must be positive")
	}
	if c.Matcher.RetryAttempts < 0 || c.Matcher.RetryAttempts > 1 {
		return errors.New("matcher.retry_attempts must be 0 or 1")
	}
	if c.Matcher.MaxTranscriptChars <= 0 {
		return errors.New("matcher.max_transcript_chars must be positive")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}
