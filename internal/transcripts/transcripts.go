// Package transcripts produces and caches dialog transcripts for video
// files. Transcription is the slowest stage of a run, so results are cached
// by content hash and reused for identical files regardless of path.
package transcripts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dialogdetective/internal/diskcache"
	"dialogdetective/internal/logging"
)

// Transcript holds the extracted dialog for one video.
type Transcript struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Empty reports whether no dialog was recovered.
func (t Transcript) Empty() bool {
	return t.Text == ""
}

// Source produces a transcript for a video file.
type Source interface {
	Transcribe(ctx context.Context, videoPath string) (Transcript, error)
}

// Cache stores transcripts keyed by video content hash.
type Cache struct {
	store  *diskcache.Store
	logger *slog.Logger
}

// OpenCache opens the transcript cache under cacheRoot.
func OpenCache(cacheRoot string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	store, err := diskcache.Open(cacheRoot, "transcripts", ttl, logger)
	if err != nil {
		return nil, fmt.Errorf("open transcript cache: %w", err)
	}
	return &Cache{store: store, logger: logger}, nil
}

// Get returns the cached transcript for the hash, if present and fresh.
func (c *Cache) Get(hash string) (Transcript, bool) {
	var transcript Transcript
	hit, err := c.store.Load(hash, &transcript)
	if err != nil {
		c.logger.Warn("transcript cache read failed", logging.String("hash", hash), logging.Error(err))
		return Transcript{}, false
	}
	return transcript, hit
}

// Put stores the transcript under the hash.
func (c *Cache) Put(hash string, transcript Transcript) error {
	return c.store.Store(hash, transcript)
}

// CachedSource wraps a Source with the hash-keyed cache. The hash is
// supplied by the caller so the file is only read once per run.
type CachedSource struct {
	inner  Source
	cache  *Cache
	logger *slog.Logger
}

// NewCachedSource wires a cache in front of a transcript source.
func NewCachedSource(inner Source, cache *Cache, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachedSource{inner: inner, cache: cache, logger: logger}
}

// TranscribeHashed returns the cached transcript for hash when available and
// transcribes the file otherwise. Transcription failures are never cached.
func (s *CachedSource) TranscribeHashed(ctx context.Context, videoPath, hash string) (Transcript, error) {
	if transcript, ok := s.cache.Get(hash); ok {
		s.logger.Debug("transcript cache hit", logging.String("video", videoPath))
		return transcript, nil
	}
	transcript, err := s.inner.Transcribe(ctx, videoPath)
	if err != nil {
		return Transcript{}, err
	}
	if err := s.cache.Put(hash, transcript); err != nil {
		s.logger.Warn("transcript cache write failed", logging.String("video", videoPath), logging.Error(err))
	}
	return transcript, nil
}
