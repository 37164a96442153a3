package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result is one geocoding candidate.
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Importance  float64
}

// ErrNoResults indicates the provider returned an empty candidate list.
var ErrNoResults = errors.New("no geocoding results")

// ErrRateLimited indicates the provider rejected the request with HTTP 429.
var ErrRateLimited = errors.New("geocoding rate limited")

// HTTPDoer describes the HTTP client used by the geocoding service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries a Nominatim-compatible search endpoint.
type Client struct {
	baseURL string
	client  HTTPDoer
	timeout time.Duration
}

// New constructs a geocoding client. A nil doer falls back to a dedicated
// http.Client with the given timeout.
func New(baseURL string, timeout time.Duration, doer HTTPDoer) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("geocoding base url required")
	}
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, client: doer, timeout: timeout}, nil
}

type searchResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Search returns candidates for a free-form query ordered as the provider
// returned them.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "5")

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", "fairway/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read geocoding response: %w", err)
	}

	var raw []searchResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoResults
	}

	results := make([]Result, 0, len(raw))
	for _, entry := range raw {
		lat, err := strconv.ParseFloat(entry.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(entry.Lon, 64)
		if err != nil {
			continue
		}
		results = append(results, Result{
			Lat:         lat,
			Lon:         lon,
			DisplayName: entry.DisplayName,
			Importance:  entry.Importance,
		})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// Best returns the candidate with the highest importance score.
func Best(results []Result) Result {
	best := results[0]
	for _, candidate := range results[1:] {
		if candidate.Importance > best.Importance {
			best = candidate
		}
	}
	return best
}
