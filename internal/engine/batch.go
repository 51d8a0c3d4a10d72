package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"dialogdetective/internal/catalog"
	"dialogdetective/internal/logging"
	"dialogdetective/internal/services"
	"dialogdetective/internal/transcripts"
	"dialogdetective/internal/videos"
)

// FileResult is the outcome of the pipeline for one video file. Either Match
// or Err is set; a failure on one file never affects its neighbors.
type FileResult struct {
	File       videos.File
	Hash       string
	Transcript transcripts.Transcript
	Match      *Match
	Err        error
}

// Pipeline runs hash, transcription, and matching across a batch of files
// with a bounded worker pool.
type Pipeline struct {
	engine      *Engine
	transcriber *transcripts.CachedSource
	workers     int
	logger      *slog.Logger
}

// NewPipeline wires a batch pipeline. workers below 1 is clamped to 1.
func NewPipeline(engine *Engine, transcriber *transcripts.CachedSource, workers int, logger *slog.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		engine:      engine,
		transcriber: transcriber,
		workers:     workers,
		logger:      logger,
	}
}

// Run processes every file and returns results in input order. Cancellation
// stops workers from picking up further files; files already in flight
// finish or fail on their own. A fatal configuration error on any file
// cancels the rest of the batch.
func (p *Pipeline) Run(ctx context.Context, files []videos.File, series *catalog.Series, filter catalog.SeasonFilter) []FileResult {
	results := make([]FileResult, len(files))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for worker := 0; worker < p.workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.processFile(ctx, files[idx], series, filter)
				if services.IsFatal(results[idx].Err) {
					cancel()
				}
			}
		}()
	}

dispatch:
	for idx := range files {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for idx := range results {
		if results[idx].File.Path == "" {
			results[idx] = FileResult{File: files[idx], Err: ctx.Err()}
		}
	}
	return results
}

func (p *Pipeline) processFile(ctx context.Context, file videos.File, series *catalog.Series, filter catalog.SeasonFilter) FileResult {
	result := FileResult{File: file}
	ctx = services.WithVideo(ctx, file.Base())
	log := logging.WithContext(ctx, p.logger)

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	hash, err := videos.Hash(file.Path)
	if err != nil {
		result.Err = err
		return result
	}
	result.Hash = hash

	transcript, err := p.transcriber.TranscribeHashed(services.WithStage(ctx, "transcribe"), file.Path, hash)
	if err != nil {
		result.Err = err
		return result
	}
	result.Transcript = transcript
	if transcript.Empty() {
		result.Err = errors.New("transcript is empty, no dialog recovered")
		return result
	}

	match, err := p.engine.Match(services.WithStage(ctx, "match"), transcript.Text, series, filter)
	if err != nil {
		result.Err = err
		return result
	}
	result.Match = match
	log.Debug("file processed",
		logging.Bool("resolved", match.Resolved),
		logging.Duration("dialog", transcript.Duration))
	return result
}
