package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fairway/internal/geo"
)

// Element is one tagged map feature returned by the provider. Ways and
// relations carry their centroid in Lat/Lon.
type Element struct {
	Type string
	ID   int64
	Lat  float64
	Lon  float64
	Tags map[string]string
}

// ErrRateLimited indicates the provider rejected the request with HTTP 429.
var ErrRateLimited = errors.New("map feature query rate limited")

// HTTPDoer describes the HTTP client used by the map-feature service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries an Overpass-compatible interpreter endpoint.
type Client struct {
	endpoint string
	client   HTTPDoer
	timeout  time.Duration
}

const interpreterPath = "/api/interpreter"

// New constructs a map-feature client. baseURL may point at either the host
// root or the interpreter endpoint itself.
func New(baseURL string, timeout time.Duration, doer HTTPDoer) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("map feature base url required")
	}
	if !strings.HasSuffix(baseURL, interpreterPath) {
		baseURL += interpreterPath
	}
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{endpoint: baseURL, client: doer, timeout: timeout}, nil
}

type elementResponse struct {
	Elements []struct {
		Type   string            `json:"type"`
		ID     int64             `json:"id"`
		Lat    float64           `json:"lat"`
		Lon    float64           `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// CourseFeatures fetches golf, water, building and landuse features inside
// the bounding box.
func (c *Client) CourseFeatures(ctx context.Context, box geo.BoundingBox) ([]Element, error) {
	bbox := fmt.Sprintf("%f,%f,%f,%f", box.South, box.West, box.North, box.East)
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["golf"](%[1]s);
  way["golf"](%[1]s);
  way["natural"="water"](%[1]s);
  way["building"](%[1]s);
  way["landuse"](%[1]s);
  relation["golf"](%[1]s);
);
out center;`, bbox)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build map feature request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("map feature request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("map feature query returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read map feature response: %w", err)
	}

	var decoded elementResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode map feature response: %w", err)
	}

	elements := make([]Element, 0, len(decoded.Elements))
	for _, raw := range decoded.Elements {
		element := Element{Type: raw.Type, ID: raw.ID, Lat: raw.Lat, Lon: raw.Lon, Tags: raw.Tags}
		if raw.Center != nil {
			element.Lat = raw.Center.Lat
			element.Lon = raw.Center.Lon
		}
		elements = append(elements, element)
	}
	return elements, nil
}
