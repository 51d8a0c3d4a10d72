// Package matchcache persists validated match results in SQLite so a
// transcript is never re-judged by the same backend and model twice.
package matchcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the cache database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Result is one cached match outcome. Unresolved outcomes are cached too:
// a backend that could not decide will not decide differently on replay.
type Result struct {
	Fingerprint string
	Backend     string
	Model       string
	Resolved    bool
	Season      int
	Episode     int
	Title       string
	Evidence    string
	Reason      string
	CreatedAt   time.Time
}

// Store manages match result persistence backed by SQLite. Writers take a
// file lock so concurrent processes sharing one cache directory do not
// interleave schema setup or writes.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const lockRetryDelay = 50 * time.Millisecond

// Open initializes or connects to the match cache database under cacheDir.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	dbPath := filepath.Join(cacheDir, "matches.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(filepath.Join(cacheDir, "matches.lock")),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	if err := s.withFileLock(ctx, func() error {
		var tableExists int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
		).Scan(&tableExists)
		if err != nil {
			return fmt.Errorf("check schema_version table: %w", err)
		}
		if tableExists == 0 {
			_, err := s.db.ExecContext(ctx, schemaSQL)
			if err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			return nil
		}
		var version int
		if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version != schemaVersion {
			return fmt.Errorf("%w: database has version %d, expected %d (run 'dialogdetective cache clear' or delete %s)",
				ErrSchemaMismatch, version, schemaVersion, s.path)
		}
		return nil
	}); err != nil {
		return err
	}
	return nil
}

func (s *Store) withFileLock(ctx context.Context, op func() error) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return errors.New("acquire cache lock: not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()
	return op()
}

// Get looks up a cached result by fingerprint.
func (s *Store) Get(ctx context.Context, fingerprint string) (*Result, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, backend, model, resolved, season, episode, title, evidence, reason, created_at
		FROM match_results WHERE fingerprint = ?`, fingerprint)
	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read match result: %w", err)
	}
	return result, nil
}

// Put stores a result. Writing the same fingerprint again replaces the row,
// so replays converge on one entry per key.
func (s *Store) Put(ctx context.Context, result Result) error {
	if result.Fingerprint == "" {
		return errors.New("fingerprint required")
	}
	createdAt := result.CreatedAt.UTC()
	if result.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return s.withFileLock(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO match_results (fingerprint, backend, model, resolved, season, episode, title, evidence, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(fingerprint) DO UPDATE SET
				backend = excluded.backend,
				model = excluded.model,
				resolved = excluded.resolved,
				season = excluded.season,
				episode = excluded.episode,
				title = excluded.title,
				evidence = excluded.evidence,
				reason = excluded.reason,
				created_at = excluded.created_at`,
			result.Fingerprint, result.Backend, result.Model, boolToInt(result.Resolved),
			result.Season, result.Episode, result.Title, result.Evidence, result.Reason,
			createdAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("store match result: %w", err)
		}
		return nil
	})
}

// List returns all cached results, newest first.
func (s *Store) List(ctx context.Context) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, backend, model, resolved, season, episode, title, evidence, reason, created_at
		FROM match_results ORDER BY created_at DESC, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return results, nil
}

// Remove deletes one cached result. Removing an absent fingerprint is not an
// error.
func (s *Store) Remove(ctx context.Context, fingerprint string) (bool, error) {
	var removed bool
	err := s.withFileLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM match_results WHERE fingerprint = ?", fingerprint)
		if err != nil {
			return fmt.Errorf("remove match result: %w", err)
		}
		count, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove match result: %w", err)
		}
		removed = count > 0
		return nil
	})
	return removed, err
}

// Clear deletes every cached result and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := s.withFileLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM match_results")
		if err != nil {
			return fmt.Errorf("clear match results: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("clear match results: %w", err)
		}
		return nil
	})
	return removed, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*Result, error) {
	var (
		result    Result
		resolved  int
		createdAt string
	)
	if err := row.Scan(&result.Fingerprint, &result.Backend, &result.Model, &resolved,
		&result.Season, &result.Episode, &result.Title, &result.Evidence, &result.Reason, &createdAt); err != nil {
		return nil, err
	}
	result.Resolved = resolved != 0
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		result.CreatedAt = ts
	}
	return &result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
