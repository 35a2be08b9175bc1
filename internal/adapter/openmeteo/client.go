// Package openmeteo fetches per-domain metadata documents from the
// Open-Meteo spatial data service.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-map-viewer/internal/domain"
	"github.com/couchcryptid/weather-map-viewer/internal/observability"
)

// Client fetches latest-run metadata documents. A fetch is a single attempt:
// failures are reported to the caller, which retains its previous state.
type Client struct {
	httpClient *http.Client
	baseURL    string // overrides the per-domain endpoint rule when non-empty (tests)
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a metadata client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchLatest retrieves the latest-run metadata document for a domain.
func (c *Client) FetchLatest(ctx context.Context, domainID string) (domain.MetadataDocument, error) {
	u := domain.MetadataURL(domainID)
	if c.baseURL != "" {
		u = fmt.Sprintf("%s/data_spatial/%s/latest.json", c.baseURL, domainID)
	}

	start := time.Now()
	doc, err := c.fetch(ctx, u)
	c.metrics.MetadataFetchSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.MetadataFetches.WithLabelValues(domainID, "error").Inc()
		return domain.MetadataDocument{}, err
	}

	c.metrics.MetadataFetches.WithLabelValues(domainID, "success").Inc()
	c.logger.Debug("metadata fetched",
		"domain", domainID,
		"reference_time", doc.ReferenceTime,
		"variables", len(doc.Variables),
	)
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) (domain.MetadataDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.MetadataDocument{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.MetadataDocument{}, fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.MetadataDocument{}, fmt.Errorf("metadata endpoint: status %d: %s", resp.StatusCode, body)
	}

	var wire latestDocument
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return domain.MetadataDocument{}, fmt.Errorf("decode metadata: %w", err)
	}

	refTime, err := parseReferenceTime(wire.ReferenceTime)
	if err != nil {
		return domain.MetadataDocument{}, err
	}

	return domain.MetadataDocument{
		ReferenceTime: refTime,
		Variables:     wire.Variables,
	}, nil
}

// latestDocument is the wire shape of <endpoint>/data_spatial/<domain>/latest.json.
type latestDocument struct {
	ReferenceTime string   `json:"reference_time"`
	Variables     []string `json:"variables"`
}

// referenceTimeLayouts lists the timestamp shapes observed in published
// documents: full RFC 3339 and the minute-precision variant without a zone
// designator (always UTC).
var referenceTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
}

func parseReferenceTime(s string) (time.Time, error) {
	for _, layout := range referenceTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse reference_time %q: unrecognized format", s)
}
