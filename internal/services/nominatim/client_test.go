package nominatim_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fairway/internal/services/nominatim"
)

func newClient(t *testing.T, handler http.HandlerFunc) *nominatim.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := nominatim.New(server.URL, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestSearchDecodesCandidates(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "pebble beach golf course" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("unexpected format %q", got)
		}
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat":"36.5673","lon":"-121.9500","display_name":"Pebble Beach","importance":0.85},
			{"lat":"not-a-number","lon":"0","display_name":"Broken","importance":0.9},
			{"lat":"10.0","lon":"20.0","display_name":"Elsewhere","importance":0.2}
		]`))
	})

	results, err := client.Search(context.Background(), "pebble beach golf course")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected unparseable candidate dropped, got %d results", len(results))
	}
	if results[0].Lat != 36.5673 || results[0].Lon != -121.9500 {
		t.Fatalf("unexpected first candidate %+v", results[0])
	}

	best := nominatim.Best(results)
	if best.DisplayName != "Pebble Beach" {
		t.Fatalf("expected highest-importance candidate, got %q", best.DisplayName)
	}
}

func TestSearchRateLimited(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := client.Search(context.Background(), "anywhere")
	if !errors.Is(err, nominatim.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	_, err := client.Search(context.Background(), "nowhere")
	if !errors.Is(err, nominatim.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestSearchServerError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := client.Search(context.Background(), "anywhere"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := nominatim.New("  ", time.Second, nil); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
