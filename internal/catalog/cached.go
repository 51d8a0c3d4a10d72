package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dialogdetective/internal/diskcache"
	"dialogdetective/internal/logging"
)

// CachedProvider wraps a Provider with a disk-backed catalog cache so repeat
// runs against the same show skip the network entirely.
type CachedProvider struct {
	inner  Provider
	store  *diskcache.Store
	logger *slog.Logger
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider opens the catalog cache under cacheRoot and wires it in
// front of the given provider.
func NewCachedProvider(inner Provider, cacheRoot string, ttl time.Duration, logger *slog.Logger) (*CachedProvider, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	store, err := diskcache.Open(cacheRoot, "catalog", ttl, logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog cache: %w", err)
	}
	return &CachedProvider{inner: inner, store: store, logger: logger}, nil
}

// Lookup returns the cached catalog for the show when fresh, falling through
// to the wrapped provider otherwise. Lookup failures are never cached.
func (p *CachedProvider) Lookup(ctx context.Context, show string) (*Series, error) {
	key := cacheKey(show)
	var cached Series
	hit, err := p.store.Load(key, &cached)
	if err != nil {
		p.logger.Warn("catalog cache read failed", logging.String("show", show), logging.Error(err))
	}
	if hit {
		p.logger.Debug("catalog cache hit", logging.String("show", show), logging.Int("episodes", len(cached.Episodes)))
		return &cached, nil
	}

	series, err := p.inner.Lookup(ctx, show)
	if err != nil {
		return nil, err
	}
	if err := p.store.Store(key, series); err != nil {
		p.logger.Warn("catalog cache write failed", logging.String("show", show), logging.Error(err))
	}
	return series, nil
}

func cacheKey(show string) string {
	return strings.ToLower(NormalizeShowName(show))
}
