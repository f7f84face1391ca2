// Package geo provides address geocoding backed by the OpenStreetMap
// Nominatim API. Geocoding is best-effort: callers absorb failures and keep
// the record without coordinates.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves postal addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

// NominatimClient is a Geocoder backed by a Nominatim endpoint.
type NominatimClient struct {
	baseURL string
	region  string
	client  *http.Client
}

// Option customizes a NominatimClient.
type Option func(*NominatimClient)

// WithBaseURL overrides the Nominatim endpoint. Used in tests and for
// self-hosted instances.
func WithBaseURL(u string) Option {
	return func(c *NominatimClient) { c.baseURL = u }
}

// WithRegion restricts results to the given ISO country code.
func WithRegion(code string) Option {
	return func(c *NominatimClient) { c.region = code }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *NominatimClient) { c.client.Timeout = d }
}

// NewNominatimClient creates a geocoder limited to French addresses by
// default.
func NewNominatimClient(opts ...Option) *NominatimClient {
	c := &NominatimClient{
		baseURL: defaultBaseURL,
		region:  "fr",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address to coordinates. Returns (nil, nil) when the
// address is well-formed but matches nothing; errors are reserved for
// transport and decoding failures.
func (c *NominatimClient) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	if address == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	if c.region != "" {
		q.Set("countrycodes", c.region)
	}

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "Dermo-CRM/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("geocoder returned %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}

// MockGeocoder is a test double for Geocoder.
type MockGeocoder struct {
	Result *Coordinates
	Err    error
	Called []string
}

func (m *MockGeocoder) Geocode(_ context.Context, address string) (*Coordinates, error) {
	m.Called = append(m.Called, address)
	return m.Result, m.Err
}
