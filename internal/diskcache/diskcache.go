package diskcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dialogdetective/internal/fileutil"
	"dialogdetective/internal/logging"
	"dialogdetective/internal/textutil"
)

// envelope wraps cached payloads with the timestamp used for TTL checks.
type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// Store persists JSON payloads as one file per key under a named cache
// subdirectory. Keys are sanitized to filesystem-safe tokens. Writes are
// atomic (temp file + rename) so a crash never leaves a half-written entry.
type Store struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
	mu     sync.RWMutex
}

// Open creates (if needed) and returns the cache subdirectory named name
// under root. A zero ttl disables expiry.
func Open(root, name string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("diskcache: root directory required")
	}
	dir := filepath.Join(root, textutil.SanitizeToken(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "diskcache"),
	}, nil
}

// Dir returns the directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the entry for key into target. It reports false when the entry
// does not exist or has expired; expired entries are removed as a side effect.
func (s *Store) Load(key string, target any) (bool, error) {
	path := s.entryPath(key)

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read cache entry %q: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("parse cache entry %q: %w", path, err)
	}

	if s.expired(env.StoredAt) {
		if err := s.Remove(key); err != nil {
			s.logger.Debug("failed to remove expired entry", logging.String("path", path), logging.Error(err))
		}
		return false, nil
	}

	if err := json.Unmarshal(env.Data, target); err != nil {
		return false, fmt.Errorf("decode cache entry %q: %w", path, err)
	}
	return true, nil
}

// Store writes the entry for key, replacing any previous value.
func (s *Store) Store(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	data, err := json.MarshalIndent(envelope{StoredAt: time.Now().UTC(), Data: payload}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	path := s.entryPath(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry %q: %w", path, err)
	}
	return nil
}

// Remove deletes the entry for key. Removing a missing entry is not an error.
func (s *Store) Remove(key string) error {
	path := s.entryPath(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache entry %q: %w", path, err)
	}
	return nil
}

// Clean removes all expired entries and returns how many were deleted.
// It is a no-op when no TTL is configured.
func (s *Store) Clean() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if s.expired(env.StoredAt) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *Store) expired(storedAt time.Time) bool {
	if s.ttl <= 0 || storedAt.IsZero() {
		return false
	}
	return time.Since(storedAt) > s.ttl
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, textutil.SanitizeToken(key)+".json")
}
