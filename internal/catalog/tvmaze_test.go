package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dialogdetective/internal/logging"
	"dialogdetective/internal/services"
)

const showPayload = `{
  "name": "Example Show",
  "premiered": "2010-09-01",
  "_embedded": {
    "episodes": [
      {"season": 1, "number": 1, "name": "Pilot", "summary": "<p>The <b>beginning</b>.</p>", "airdate": "2010-09-01", "runtime": 45},
      {"season": 1, "number": 2, "name": "Second", "summary": "", "airdate": "2010-09-08", "runtime": 45},
      {"season": 0, "number": 0, "name": "Special", "summary": "", "airdate": "", "runtime": 60}
    ]
  }
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *TVMazeClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewTVMazeClient(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewTVMazeClient: %v", err)
	}
	return server, client
}

func TestLookupParsesShow(t *testing.T) {
	var gotQuery, gotEmbed string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotEmbed = r.URL.Query().Get("embed")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(showPayload))
	})

	series, err := client.Lookup(context.Background(), "Example Show")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gotQuery != "Example Show" || gotEmbed != "episodes" {
		t.Fatalf("unexpected query params: q=%q embed=%q", gotQuery, gotEmbed)
	}
	if series.Name != "Example Show" {
		t.Fatalf("name = %q", series.Name)
	}
	if len(series.Episodes) != 2 {
		t.Fatalf("expected specials excluded, got %d episodes", len(series.Episodes))
	}
	if series.Episodes[0].Summary != "The beginning ." && series.Episodes[0].Summary != "The beginning." {
		// Tokenized text keeps word boundaries; markup must be gone.
		t.Fatalf("summary = %q", series.Episodes[0].Summary)
	}
}

func TestLookupNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"name":"Not Found"}`, http.StatusNotFound)
	})

	_, err := client.Lookup(context.Background(), "No Such Show")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupServerError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Lookup(context.Background(), "Example")
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if errors.Is(err, services.ErrNotFound) {
		t.Fatalf("500 misclassified as not found: %v", err)
	}
}

func TestLookupEmptyShow(t *testing.T) {
	client, err := NewTVMazeClient("https://example.invalid")
	if err != nil {
		t.Fatalf("NewTVMazeClient: %v", err)
	}
	if _, err := client.Lookup(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank show name")
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"plain text", "plain text"},
		{"", ""},
		{"<p></p>", ""},
	}
	for _, tc := range cases {
		if got := stripMarkup(tc.in); got != tc.want {
			t.Fatalf("stripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCachedProviderServesSecondLookupFromDisk(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(showPayload))
	})

	provider, err := NewCachedProvider(client, t.TempDir(), time.Hour, logging.NewNop())
	if err != nil {
		t.Fatalf("NewCachedProvider: %v", err)
	}

	first, err := provider.Lookup(context.Background(), "Example Show")
	if err != nil {
		t.Fatalf("first Lookup: %v", err)
	}
	second, err := provider.Lookup(context.Background(), "example  show")
	if err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
	if first.Name != second.Name || len(first.Episodes) != len(second.Episodes) {
		t.Fatalf("cached series differs: %+v vs %+v", first, second)
	}
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(showPayload))
	})

	provider, err := NewCachedProvider(client, t.TempDir(), time.Hour, logging.NewNop())
	if err != nil {
		t.Fatalf("NewCachedProvider: %v", err)
	}

	if _, err := provider.Lookup(context.Background(), "Example Show"); err == nil {
		t.Fatal("expected first lookup to fail")
	}
	if _, err := provider.Lookup(context.Background(), "Example Show"); err != nil {
		t.Fatalf("second lookup should succeed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls)
	}
}
