// Package climateapi is the HTTP client for the upstream climate data API:
// municipality feature layers and the index metadata catalog.
package climateapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
)

// Client fetches municipality features and index metadata from the climate
// data API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a climate data API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Municipalities fetches the feature layer for one (index, scenario, period)
// selection.
func (c *Client) Municipalities(ctx context.Context, index, scenario, period string) (domain.FeatureCollection, error) {
	params := url.Values{
		"scenario": {scenario},
		"period":   {period},
	}
	u := fmt.Sprintf("%s/v1/indices/%s/municipalities?%s", c.baseURL, url.PathEscape(index), params.Encode())

	var fc domain.FeatureCollection
	if err := c.doRequest(ctx, u, "features", &fc); err != nil {
		return domain.FeatureCollection{}, err
	}
	return fc, nil
}

// IndexMetadata fetches one catalog row and normalizes it to the canonical
// schema. An unknown index code returns a zero-value IndexMetadata and no
// error; callers degrade to the fallback scale.
func (c *Client) IndexMetadata(ctx context.Context, code string) (domain.IndexMetadata, error) {
	u := fmt.Sprintf("%s/v1/indices/%s", c.baseURL, url.PathEscape(code))

	var raw domain.RawIndexMetadata
	err := c.doRequest(ctx, u, "metadata", &raw)
	if err != nil {
		if errors.Is(err, errNotFound) {
			c.logger.Warn("index not in catalog", "index", code)
			return domain.IndexMetadata{}, nil
		}
		return domain.IndexMetadata{}, err
	}
	return domain.NormalizeIndexMetadata(raw), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, resource string, out any) error {
	start := time.Now()
	err := c.fetch(ctx, fullURL, resource, out)
	c.metrics.UpstreamDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.UpstreamRequests.WithLabelValues(resource, outcome).Inc()
	return err
}

func (c *Client) fetch(ctx context.Context, fullURL, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("data API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// errNotFound marks a 404 from the upstream so IndexMetadata can distinguish
// "unknown code" from a transport failure.
var errNotFound = errors.New("not found")
