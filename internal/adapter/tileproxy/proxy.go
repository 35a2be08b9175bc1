package tileproxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-map-viewer/internal/observability"
)

// Proxy serves tiles for registered schemes over HTTP, caching upstream
// responses in memory.
type Proxy struct {
	registry   *Registry
	cache      *lruCache
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewProxy creates a tile proxy over the given registry.
func NewProxy(registry *Registry, cacheSize int, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Proxy {
	return &Proxy{
		registry:   registry,
		cache:      newLRUCache(cacheSize),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// ServeTile resolves and streams one tile. scheme and rest come from the
// request path "/tiles/{scheme}/{rest...}".
func (p *Proxy) ServeTile(w http.ResponseWriter, r *http.Request, scheme, rest string) {
	resolver, err := p.registry.Lookup(scheme)
	if err != nil {
		p.metrics.TileRequests.WithLabelValues(scheme, "error").Inc()
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	upstream, err := resolver.Resolve(rest)
	if err != nil {
		p.metrics.TileRequests.WithLabelValues(scheme, "error").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if cached, ok := p.cache.get(upstream); ok {
		p.metrics.TileRequests.WithLabelValues(scheme, "hit").Inc()
		writeTile(w, cached)
		return
	}

	t, err := p.fetch(r, upstream)
	if err != nil {
		p.metrics.TileRequests.WithLabelValues(scheme, "error").Inc()
		p.logger.Warn("tile fetch failed", "scheme", scheme, "upstream", upstream, "error", err)
		http.Error(w, "upstream tile fetch failed", http.StatusBadGateway)
		return
	}

	p.cache.put(upstream, t)
	p.metrics.TileRequests.WithLabelValues(scheme, "miss").Inc()
	writeTile(w, t)
}

func (p *Proxy) fetch(r *http.Request, upstream string) (tile, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream, nil)
	if err != nil {
		return tile{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tile{}, fmt.Errorf("tile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tile{}, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tile{}, fmt.Errorf("read tile body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return tile{contentType: contentType, body: body}, nil
}

func writeTile(w http.ResponseWriter, t tile) {
	w.Header().Set("Content-Type", t.contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(t.body) //nolint:errcheck // best-effort tile response
}
