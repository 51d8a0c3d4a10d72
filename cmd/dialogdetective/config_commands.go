package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dialogdetective/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set transcriber.model_path before running dialogdetective.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"cache_dir", cfg.Paths.CacheDir},
				{"log_dir", cfg.Paths.LogDir},
				{"catalog.base_url", cfg.Catalog.BaseURL},
				{"catalog.ttl_hours", fmt.Sprintf("%d", cfg.Catalog.TTLHours)},
				{"transcriber.ffmpeg", cfg.Transcriber.FFmpegBinary},
				{"transcriber.whisper", cfg.Transcriber.WhisperBinary},
				{"transcriber.model_path", cfg.Transcriber.ModelPath},
				{"transcriber.language", cfg.Transcriber.Language},
				{"matcher.backend", cfg.Matcher.Backend},
				{"matcher.model", displayModel(cfg.Matcher.Model)},
				{"matcher.timeout_seconds", fmt.Sprintf("%d", cfg.Matcher.TimeoutSeconds)},
				{"matcher.retry_attempts", fmt.Sprintf("%d", cfg.Matcher.RetryAttempts)},
				{"library.template", cfg.Library.Template},
				{"library.overwrite_existing", fmt.Sprintf("%t", cfg.Library.OverwriteExisting)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
				{"workers", fmt.Sprintf("%d", cfg.Workers)},
			}
			if isTerminal(out) {
				fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			} else {
				for _, row := range rows {
					fmt.Fprintf(out, "%s\t%s\n", row[0], row[1])
				}
			}
			return nil
		},
	}
}

func displayModel(model string) string {
	if model == "" {
		return "(backend default)"
	}
	return model
}
