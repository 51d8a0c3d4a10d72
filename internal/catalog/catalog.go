// Package catalog fetches and filters the episode listings that ground a
// match. Every season and episode number a match may cite must exist here
// first; anything outside the catalog is rejected downstream.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Episode is one entry in a show's catalog.
type Episode struct {
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	AirDate string `json:"air_date,omitempty"`
	Runtime int    `json:"runtime,omitempty"`
}

// Ref returns the canonical SxxEyy reference for the episode.
func (e Episode) Ref() string {
	return fmt.Sprintf("S%02dE%02d", e.Season, e.Episode)
}

// Series is a fetched show together with its full episode catalog.
type Series struct {
	Name     string    `json:"name"`
	Premiere string    `json:"premiere,omitempty"`
	Episodes []Episode `json:"episodes"`
}

// Seasons returns the distinct season numbers present in the catalog,
// ascending.
func (s *Series) Seasons() []int {
	seen := make(map[int]struct{})
	for _, ep := range s.Episodes {
		seen[ep.Season] = struct{}{}
	}
	seasons := make([]int, 0, len(seen))
	for n := range seen {
		seasons = append(seasons, n)
	}
	sort.Ints(seasons)
	return seasons
}

// Find returns the catalog entry for the given season and episode numbers.
func (s *Series) Find(season, episode int) (Episode, bool) {
	for _, ep := range s.Episodes {
		if ep.Season == season && ep.Episode == episode {
			return ep, true
		}
	}
	return Episode{}, false
}

// SeasonFilter restricts candidates to a subset of seasons. An empty filter
// passes every season.
type SeasonFilter struct {
	seasons map[int]struct{}
}

// NewSeasonFilter builds a filter admitting only the listed seasons.
func NewSeasonFilter(seasons ...int) SeasonFilter {
	if len(seasons) == 0 {
		return SeasonFilter{}
	}
	set := make(map[int]struct{}, len(seasons))
	for _, n := range seasons {
		set[n] = struct{}{}
	}
	return SeasonFilter{seasons: set}
}

// Empty reports whether the filter admits all seasons.
func (f SeasonFilter) Empty() bool {
	return len(f.seasons) == 0
}

// Admits reports whether the season passes the filter.
func (f SeasonFilter) Admits(season int) bool {
	if f.Empty() {
		return true
	}
	_, ok := f.seasons[season]
	return ok
}

// Seasons returns the filtered season numbers, ascending.
func (f SeasonFilter) Seasons() []int {
	out := make([]int, 0, len(f.seasons))
	for n := range f.seasons {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Filter returns the episodes admitted by the season filter, preserving
// catalog order.
func Filter(episodes []Episode, filter SeasonFilter) []Episode {
	if filter.Empty() {
		return episodes
	}
	out := make([]Episode, 0, len(episodes))
	for _, ep := range episodes {
		if filter.Admits(ep.Season) {
			out = append(out, ep)
		}
	}
	return out
}

// Provider fetches a series catalog by show name.
type Provider interface {
	Lookup(ctx context.Context, show string) (*Series, error)
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// NormalizeShowName collapses whitespace and title-cases a user-supplied
// show name for display and catalog cache keys.
func NormalizeShowName(name string) string {
	fields := strings.Fields(name)
	return titleCaser.String(strings.Join(fields, " "))
}
