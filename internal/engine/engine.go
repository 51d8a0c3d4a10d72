// Package engine coordinates a match: candidate filtering, cache lookup,
// backend invocation, validation, and result persistence. Every reference a
// backend proposes is checked against the candidate set; anything outside it
// is recorded as unresolved rather than trusted.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dialogdetective/internal/catalog"
	"dialogdetective/internal/logging"
	"dialogdetective/internal/matchcache"
	"dialogdetective/internal/matcher"
)

// NoCandidatesError reports that filtering left nothing for the backend to
// choose from.
type NoCandidatesError struct {
	Show    string
	Seasons []int
}

func (e *NoCandidatesError) Error() string {
	if len(e.Seasons) > 0 {
		return fmt.Sprintf("no candidate episodes for %q in seasons %v", e.Show, e.Seasons)
	}
	return fmt.Sprintf("no candidate episodes for %q", e.Show)
}

// Match is the validated outcome for one transcript.
type Match struct {
	Resolved    bool
	Episode     catalog.Episode
	Evidence    string
	Reason      string
	Fingerprint string
	Backend     string
	Model       string
	FromCache   bool
	// CacheWriteErr reports a failed cache write for an otherwise successful
	// match; the outcome stands but will be recomputed next run.
	CacheWriteErr error
}

// Engine runs matches against one backend and one result cache.
type Engine struct {
	backend       matcher.Backend
	store         *matchcache.Store
	retryAttempts int
	logger        *slog.Logger
}

// New creates an engine. retryAttempts bounds how many extra invocations a
// retryable backend failure earns; it is 0 or 1.
func New(backend matcher.Backend, store *matchcache.Store, retryAttempts int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if retryAttempts < 0 {
		retryAttempts = 0
	}
	return &Engine{
		backend:       backend,
		store:         store,
		retryAttempts: retryAttempts,
		logger:        logger,
	}
}

// Match identifies the episode the transcript belongs to among the series
// episodes admitted by the filter. Cached outcomes, resolved or not, are
// returned without invoking the backend.
func (e *Engine) Match(ctx context.Context, transcript string, series *catalog.Series, filter catalog.SeasonFilter) (*Match, error) {
	candidates := catalog.Filter(series.Episodes, filter)
	if len(candidates) == 0 {
		return nil, &NoCandidatesError{Show: series.Name, Seasons: filter.Seasons()}
	}

	fingerprint := matchcache.Fingerprint(transcript, candidates, e.backend.ID(), e.backend.Model())
	log := logging.WithContext(ctx, e.logger).With(
		logging.String(logging.FieldBackend, e.backend.ID()),
		logging.String("fingerprint", fingerprint[:12]),
	)

	if cached, err := e.store.Get(ctx, fingerprint); err != nil {
		log.Warn("match cache read failed", logging.Error(err))
	} else if cached != nil {
		log.Debug("match cache hit", logging.Bool("resolved", cached.Resolved))
		return e.fromCached(cached, series), nil
	}

	ref, err := e.invoke(ctx, transcript, candidates, log)
	if err != nil {
		return nil, err
	}

	match := e.validate(ref, candidates, fingerprint)
	e.persist(ctx, match, log)
	if match.Resolved {
		log.Info("episode matched",
			logging.String("episode", match.Episode.Ref()),
			logging.String("title", match.Episode.Title))
	} else {
		log.Info("match unresolved", logging.String("reason", match.Reason))
	}
	return match, nil
}

// invoke runs the backend, retrying once when the failure is one a second
// attempt could fix. Malformed output never retries: the tool answered.
func (e *Engine) invoke(ctx context.Context, transcript string, candidates []catalog.Episode, log *slog.Logger) (matcher.Reference, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retryAttempts; attempt++ {
		ref, err := e.backend.Invoke(ctx, transcript, candidates)
		if err == nil {
			return ref, nil
		}
		lastErr = err

		var backendErr *matcher.BackendError
		if !errors.As(err, &backendErr) || !backendErr.Retryable() || attempt == e.retryAttempts {
			break
		}
		if ctx.Err() != nil {
			break
		}
		log.Warn("backend invocation failed, retrying",
			logging.Int("attempt", attempt+1),
			logging.Error(err))
	}
	return matcher.Reference{}, lastErr
}

// validate accepts a reference only when it names a candidate actually
// offered to the backend. The episode title comes from the catalog, never
// from the backend's output.
func (e *Engine) validate(ref matcher.Reference, candidates []catalog.Episode, fingerprint string) *Match {
	match := &Match{
		Fingerprint: fingerprint,
		Backend:     e.backend.ID(),
		Model:       e.backend.Model(),
	}
	for _, candidate := range candidates {
		if candidate.Season == ref.Season && candidate.Episode == ref.Episode {
			match.Resolved = true
			match.Episode = candidate
			match.Evidence = ref.Evidence
			return match
		}
	}
	match.Reason = fmt.Sprintf("backend proposed %s which is not among the candidates", ref)
	return match
}

func (e *Engine) persist(ctx context.Context, match *Match, log *slog.Logger) {
	result := matchcache.Result{
		Fingerprint: match.Fingerprint,
		Backend:     match.Backend,
		Model:       match.Model,
		Resolved:    match.Resolved,
		Season:      match.Episode.Season,
		Episode:     match.Episode.Episode,
		Title:       match.Episode.Title,
		Evidence:    match.Evidence,
		Reason:      match.Reason,
	}
	if err := e.store.Put(ctx, result); err != nil {
		match.CacheWriteErr = err
		log.Warn("match cache write failed", logging.Error(err))
	}
}

func (e *Engine) fromCached(cached *matchcache.Result, series *catalog.Series) *Match {
	match := &Match{
		Resolved:    cached.Resolved,
		Evidence:    cached.Evidence,
		Reason:      cached.Reason,
		Fingerprint: cached.Fingerprint,
		Backend:     cached.Backend,
		Model:       cached.Model,
		FromCache:   true,
	}
	if !cached.Resolved {
		return match
	}
	if ep, ok := series.Find(cached.Season, cached.Episode); ok {
		match.Episode = ep
		return match
	}
	// The cached row predates a catalog change; fall back to the stored
	// columns so the result stays self-describing.
	match.Episode = catalog.Episode{
		Season:  cached.Season,
		Episode: cached.Episode,
		Title:   cached.Title,
	}
	return match
}
