package elevation_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fairway/internal/services/elevation"
)

func newClient(t *testing.T, batchSize int, handler http.HandlerFunc) *elevation.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := elevation.New(server.URL, 2*time.Second, batchSize, 0, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestLookupReturnsElevation(t *testing.T) {
	client := newClient(t, 10, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/lookup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Locations []elevation.Location `json:"locations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Locations) != 1 || req.Locations[0].Lat != 36.5 {
			t.Errorf("unexpected locations %+v", req.Locations)
		}
		w.Write([]byte(`{"results":[{"elevation":22.5}]}`))
	})

	elev, err := client.Lookup(context.Background(), 36.5, -121.9)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if elev != 22.5 {
		t.Fatalf("expected 22.5, got %f", elev)
	}
}

func TestLookupAllBatchesRequests(t *testing.T) {
	var requests atomic.Int32
	client := newClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var req struct {
			Locations []elevation.Location `json:"locations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		fmt.Fprint(w, `{"results":[`)
		for i, loc := range req.Locations {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"elevation":%f}`, loc.Lat*10)
		}
		fmt.Fprint(w, `]}`)
	})

	locations := []elevation.Location{
		{Lat: 1, Lon: 0}, {Lat: 2, Lon: 0}, {Lat: 3, Lon: 0}, {Lat: 4, Lon: 0}, {Lat: 5, Lon: 0},
	}
	elevations, err := client.LookupAll(context.Background(), locations)
	if err != nil {
		t.Fatalf("LookupAll failed: %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Fatalf("expected 3 batch requests for 5 locations at size 2, got %d", got)
	}
	if len(elevations) != len(locations) {
		t.Fatalf("expected %d elevations, got %d", len(locations), len(elevations))
	}
	for i, loc := range locations {
		if elevations[i] != loc.Lat*10 {
			t.Fatalf("elevation %d out of order: got %f", i, elevations[i])
		}
	}
}

func TestLookupRateLimited(t *testing.T) {
	client := newClient(t, 10, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := client.Lookup(context.Background(), 1, 2)
	if !errors.Is(err, elevation.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLookupAllRejectsShortResponse(t *testing.T) {
	client := newClient(t, 10, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	if _, err := client.LookupAll(context.Background(), []elevation.Location{{Lat: 1}, {Lat: 2}}); err == nil {
		t.Fatal("expected error when result count does not match location count")
	}
}

func TestLookupAllEmptyInput(t *testing.T) {
	client := newClient(t, 10, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})
	elevations, err := client.LookupAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("LookupAll failed: %v", err)
	}
	if elevations != nil {
		t.Fatalf("expected nil result, got %v", elevations)
	}
}
