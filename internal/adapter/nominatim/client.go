// Package nominatim implements domain.Geocoder against the OSM Nominatim
// reverse-geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
	"github.com/couchcryptid/soil-data-ingest-service/internal/observability"
)

// Client implements domain.Geocoder using the Nominatim reverse endpoint.
// Nominatim's usage policy requires an identifying User-Agent on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client with a bounded request timeout.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		metrics:    metrics,
		logger:     logger,
	}
}

// ReverseGeocode converts a coordinate pair to place details. A coordinate
// with no match returns an empty result and a nil error.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.PlaceResult, error) {
	params := url.Values{
		"format": {"jsonv2"},
		"lat":    {fmt.Sprintf("%f", lat)},
		"lon":    {fmt.Sprintf("%f", lon)},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	start := time.Now()
	result, err := c.doRequest(ctx, fullURL)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case result.DisplayName == "":
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.PlaceResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.PlaceResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PlaceResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.PlaceResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var nr reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return domain.PlaceResult{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.PlaceResult{
		DisplayName: nr.DisplayName,
		Name:        nr.Name,
	}, nil
}

// Nominatim API response types.

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
}
