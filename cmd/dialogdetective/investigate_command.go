package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dialogdetective/internal/catalog"
	"dialogdetective/internal/config"
	"dialogdetective/internal/engine"
	"dialogdetective/internal/executor"
	"dialogdetective/internal/logging"
	"dialogdetective/internal/matchcache"
	"dialogdetective/internal/matcher"
	"dialogdetective/internal/planner"
	"dialogdetective/internal/services"
	"dialogdetective/internal/transcripts"
	"dialogdetective/internal/videos"
)

type investigateOptions struct {
	show     string
	seasons  []int
	backend  string
	model    string
	mode     string
	output   string
	template string
}

func newInvestigateCommand(ctx *commandContext) *cobra.Command {
	opts := &investigateOptions{}

	cmd := &cobra.Command{
		Use:   "investigate <video-dir>",
		Short: "Identify episodes in a directory and plan renames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvestigate(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.show, "show", "", "Series name to match against (required)")
	cmd.Flags().IntSliceVar(&opts.seasons, "season", nil, "Restrict candidates to these seasons (repeatable)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "AI backend: claude or gemini (default from config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model identifier passed to the backend CLI")
	cmd.Flags().StringVar(&opts.mode, "mode", string(planner.ModeDryRun), "Action mode: dry-run, rename, or copy")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output directory for copy mode")
	cmd.Flags().StringVar(&opts.template, "template", "", "Filename template (default from config)")
	_ = cmd.MarkFlagRequired("show")

	return cmd
}

func runInvestigate(cmd *cobra.Command, cmdCtx *commandContext, videoDir string, opts *investigateOptions) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	backendName := cfg.Matcher.Backend
	if opts.backend != "" {
		backendName = strings.ToLower(opts.backend)
	}
	model := cfg.Matcher.Model
	if opts.model != "" {
		model = opts.model
	}
	templateText := cfg.Library.Template
	if opts.template != "" {
		templateText = opts.template
	}

	// Configuration problems surface before any file is touched.
	mode, err := planner.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	tmpl, err := planner.ParseTemplate(templateText)
	if err != nil {
		return err
	}
	for _, season := range opts.seasons {
		if season <= 0 {
			return services.Wrap(services.ErrConfiguration, "investigate", "seasons",
				fmt.Sprintf("invalid season %d", season), nil)
		}
	}
	backend, err := matcher.New(backendName, model,
		time.Duration(cfg.Matcher.TimeoutSeconds)*time.Second, cfg.Matcher.MaxTranscriptChars)
	if err != nil {
		return err
	}
	output := opts.output
	if output != "" {
		if output, err = config.ExpandPath(output); err != nil {
			return err
		}
	}

	ctx := services.WithRunID(cmd.Context(), uuid.NewString())
	log := logging.WithContext(ctx, logger)

	files, err := videos.Scan(videoDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No video files found under %s\n", videoDir)
		return nil
	}
	log.Info("starting investigation",
		logging.Int("files", len(files)),
		logging.String(logging.FieldBackend, backend.ID()),
		logging.String("show", opts.show))

	provider, err := newCatalogProvider(cfg, logger)
	if err != nil {
		return err
	}
	series, err := provider.Lookup(ctx, opts.show)
	if err != nil {
		return err
	}

	store, err := matchcache.Open(cfg.Paths.CacheDir)
	if err != nil {
		return err
	}
	defer store.Close()

	whisper, err := transcripts.NewWhisperSource(transcripts.WhisperConfig{
		FFmpegBinary:  cfg.Transcriber.FFmpegBinary,
		WhisperBinary: cfg.Transcriber.WhisperBinary,
		ModelPath:     cfg.Transcriber.ModelPath,
		Language:      cfg.Transcriber.Language,
		Timeout:       time.Duration(cfg.Transcriber.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	// Transcripts are keyed by content hash, so they never go stale.
	transcriptCache, err := transcripts.OpenCache(cfg.Paths.CacheDir, 0, logger)
	if err != nil {
		return err
	}
	transcriber := transcripts.NewCachedSource(whisper, transcriptCache, logger)

	eng := engine.New(backend, store, cfg.Matcher.RetryAttempts, logger)
	pipeline := engine.NewPipeline(eng, transcriber, cfg.Workers, logger)
	filter := catalog.NewSeasonFilter(opts.seasons...)

	results := pipeline.Run(ctx, files, series, filter)

	items := make([]planner.Item, 0, len(results))
	for _, result := range results {
		if result.Err == nil {
			items = append(items, planner.Item{File: result.File, Match: result.Match})
		}
	}
	plan, err := planner.Build(items, planner.Options{
		Show:      series.Name,
		Template:  tmpl,
		Mode:      mode,
		OutputDir: output,
		Overwrite: cfg.Library.OverwriteExisting,
	})
	if err != nil {
		return err
	}

	actionResults := executor.New(logger).Apply(ctx, plan.Actions)

	printReport(cmd, results, plan, actionResults)
	return ctx.Err()
}
