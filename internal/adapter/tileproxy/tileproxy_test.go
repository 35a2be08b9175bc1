package tileproxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-map-viewer/internal/observability"
)

type staticResolver struct{ url string }

func (s staticResolver) Resolve(string) (string, error) { return s.url, nil }

func testProxy(registry *Registry, cacheSize int) *Proxy {
	return NewProxy(registry, cacheSize, 5*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	first := staticResolver{url: "http://first"}
	second := staticResolver{url: "http://second"}

	assert.True(t, r.Register("om", first))
	assert.False(t, r.Register("om", second), "re-registration must be a no-op")

	got, err := r.Lookup("om")
	require.NoError(t, err)
	u, err := got.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "http://first", u, "original binding survives re-registration")
}

func TestRegistry_LookupUnknownScheme(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered")
}

func TestArchiveResolver(t *testing.T) {
	a := NewArchiveResolver("https://tiles.example.com/planet/")

	t.Run("rewrites with TMS row flip", func(t *testing.T) {
		// z=3, y=2 -> flipped row 2^3 - 1 - 2 = 5.
		u, err := a.Resolve("3/4/2")
		require.NoError(t, err)
		assert.Equal(t, "https://tiles.example.com/planet/3/4/5.pbf", u)
	})

	t.Run("strips extension from last segment", func(t *testing.T) {
		u, err := a.Resolve("3/4/2.mvt")
		require.NoError(t, err)
		assert.Equal(t, "https://tiles.example.com/planet/3/4/5.pbf", u)
	})

	t.Run("zoom zero", func(t *testing.T) {
		u, err := a.Resolve("0/0/0")
		require.NoError(t, err)
		assert.Equal(t, "https://tiles.example.com/planet/0/0/0.pbf", u)
	})

	badPaths := []string{"", "1/2", "1/2/3/4", "a/b/c", "3/9/2", "3/4/9", "-1/0/0"}
	for _, p := range badPaths {
		t.Run(fmt.Sprintf("rejects %q", p), func(t *testing.T) {
			_, err := a.Resolve(p)
			assert.Error(t, err)
		})
	}
}

func TestOverlayResolver(t *testing.T) {
	o := NewOverlayResolver(func(sessionID string) (string, error) {
		switch sessionID {
		case "v-1":
			return "https://s3.servert.ch/data_spatial/dwd_icon_d2/2024/05/01/0600Z/2024-05-01T0700.om?variable=temperature_2m", nil
		case "v-empty":
			return "", nil
		default:
			return "", fmt.Errorf("session not found")
		}
	})

	t.Run("resolves session to overlay URL", func(t *testing.T) {
		u, err := o.Resolve("v-1")
		require.NoError(t, err)
		assert.Contains(t, u, "variable=temperature_2m")
	})

	t.Run("no overlay loaded yet", func(t *testing.T) {
		_, err := o.Resolve("v-empty")
		assert.Error(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := o.Resolve("v-missing")
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := o.Resolve("")
		assert.Error(t, err)
	})
}

func TestLRUCache(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", tile{body: []byte("a")})
	c.put("b", tile{body: []byte("b")})

	// Touch "a" so "b" is the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", tile{body: []byte("c")})

	_, ok = c.get("b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestProxy_ServeTile(t *testing.T) {
	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write([]byte("tile-bytes")) //nolint:errcheck
	}))
	defer upstream.Close()

	registry := NewRegistry()
	registry.Register("carto", NewArchiveResolver(upstream.URL))
	p := testProxy(registry, 8)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tiles/carto/"+path, nil)
		p.ServeTile(rec, req, "carto", path)
		return rec
	}

	t.Run("miss fetches upstream", func(t *testing.T) {
		rec := get("3/4/2")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tile-bytes", rec.Body.String())
		assert.Equal(t, "application/x-protobuf", rec.Header().Get("Content-Type"))
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("repeat served from cache", func(t *testing.T) {
		rec := get("3/4/2")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tile-bytes", rec.Body.String())
		assert.Equal(t, int64(1), hits.Load(), "no second upstream fetch")
	})

	t.Run("unknown scheme is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tiles/none/1/2/3", nil)
		p.ServeTile(rec, req, "none", "1/2/3")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad tile path is 400", func(t *testing.T) {
		rec := get("not/a-tile")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProxy_ServeTile_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	registry := NewRegistry()
	registry.Register("carto", NewArchiveResolver(upstream.URL))
	p := testProxy(registry, 8)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tiles/carto/1/0/0", nil)
	p.ServeTile(rec, req, "carto", "1/0/0")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
