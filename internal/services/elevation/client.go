package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Location is a single lookup coordinate.
type Location struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// ErrRateLimited indicates the provider rejected the request with HTTP 429.
var ErrRateLimited = errors.New("elevation rate limited")

// HTTPDoer describes the HTTP client used by the elevation service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries an Open-Elevation-compatible lookup endpoint.
type Client struct {
	baseURL    string
	client     HTTPDoer
	batchSize  int
	batchDelay time.Duration
	sleep      func(context.Context, time.Duration) error
}

// New constructs an elevation client. batchSize caps locations per request;
// batchDelay is the pause inserted between consecutive batch requests.
func New(baseURL string, timeout time.Duration, batchSize int, batchDelay time.Duration, doer HTTPDoer) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("elevation base url required")
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		client:     doer,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		sleep:      sleepContext,
	}, nil
}

type lookupRequest struct {
	Locations []Location `json:"locations"`
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Lookup returns the elevation for a single coordinate.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) (float64, error) {
	elevations, err := c.LookupAll(ctx, []Location{{Lat: lat, Lon: lon}})
	if err != nil {
		return 0, err
	}
	if len(elevations) == 0 {
		return 0, errors.New("elevation response empty")
	}
	return elevations[0], nil
}

// LookupAll resolves elevations for every location, issuing batched requests
// with the configured inter-batch delay. The returned slice aligns with the
// input order.
func (c *Client) LookupAll(ctx context.Context, locations []Location) ([]float64, error) {
	if len(locations) == 0 {
		return nil, nil
	}

	elevations := make([]float64, 0, len(locations))
	for start := 0; start < len(locations); start += c.batchSize {
		if start > 0 && c.batchDelay > 0 {
			if err := c.sleep(ctx, c.batchDelay); err != nil {
				return nil, err
			}
		}
		end := start + c.batchSize
		if end > len(locations) {
			end = len(locations)
		}
		batch, err := c.lookupBatch(ctx, locations[start:end])
		if err != nil {
			return nil, err
		}
		elevations = append(elevations, batch...)
	}
	return elevations, nil
}

func (c *Client) lookupBatch(ctx context.Context, locations []Location) ([]float64, error) {
	payload, err := json.Marshal(lookupRequest{Locations: locations})
	if err != nil {
		return nil, fmt.Errorf("encode elevation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/lookup", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build elevation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read elevation response: %w", err)
	}

	var decoded lookupResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode elevation response: %w", err)
	}
	if len(decoded.Results) != len(locations) {
		return nil, fmt.Errorf("elevation returned %d results for %d locations", len(decoded.Results), len(locations))
	}

	elevations := make([]float64, len(decoded.Results))
	for i, result := range decoded.Results {
		elevations[i] = result.Elevation
	}
	return elevations, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
