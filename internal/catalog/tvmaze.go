package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"dialogdetective/internal/services"
)

// TVMazeClient looks up show catalogs via the TVMaze single-search endpoint.
type TVMazeClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*TVMazeClient)(nil)

// TVMazeOption configures a TVMazeClient.
type TVMazeOption func(*TVMazeClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TVMazeOption {
	return func(c *TVMazeClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewTVMazeClient creates a TVMaze catalog provider.
func NewTVMazeClient(baseURL string, opts ...TVMazeOption) (*TVMazeClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tvmaze base url required")
	}
	client := &TVMazeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type tvmazeShow struct {
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
	Embedded  struct {
		Episodes []tvmazeEpisode `json:"episodes"`
	} `json:"_embedded"`
}

type tvmazeEpisode struct {
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	AirDate string `json:"airdate"`
	Runtime int    `json:"runtime"`
}

// Lookup fetches the best-matching show for the query together with its full
// episode list. A show TVMaze does not know yields services.ErrNotFound.
func (c *TVMazeClient) Lookup(ctx context.Context, show string) (*Series, error) {
	show = strings.TrimSpace(show)
	if show == "" {
		return nil, errors.New("show name must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/singlesearch/shows")
	if err != nil {
		return nil, fmt.Errorf("parse tvmaze url: %w", err)
	}
	params := url.Values{}
	params.Set("q", show)
	params.Set("embed", "episodes")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "lookup", fmt.Sprintf("show %q not found", show), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tvmaze search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload tvmazeShow
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tvmaze response: %w", err)
	}

	series := &Series{
		Name:     payload.Name,
		Premiere: payload.Premiered,
		Episodes: make([]Episode, 0, len(payload.Embedded.Episodes)),
	}
	for _, ep := range payload.Embedded.Episodes {
		if ep.Season <= 0 || ep.Number <= 0 {
			// Specials carry a zero or missing number; they cannot be
			// referenced as SxxEyy so they stay out of the catalog.
			continue
		}
		series.Episodes = append(series.Episodes, Episode{
			Season:  ep.Season,
			Episode: ep.Number,
			Title:   strings.TrimSpace(ep.Name),
			Summary: stripMarkup(ep.Summary),
			AirDate: ep.AirDate,
			Runtime: ep.Runtime,
		})
	}
	if len(series.Episodes) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "lookup", fmt.Sprintf("show %q has no numbered episodes", payload.Name), nil)
	}
	return series, nil
}

// stripMarkup flattens TVMaze's HTML summaries to plain text.
func stripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var builder strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(builder.String()), " ")
		case html.TextToken:
			builder.Write(tokenizer.Text())
			builder.WriteByte(' ')
		}
	}
}
