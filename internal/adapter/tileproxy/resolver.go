package tileproxy

import (
	"fmt"
	"strconv"
	"strings"
)

// ArchiveResolver rewrites z/x/y tile coordinates onto a fixed external
// vector-tile archive. The archive stores tiles in TMS row order, so the XYZ
// row is flipped: row' = 2^z - 1 - y.
type ArchiveResolver struct {
	baseURL   string
	extension string
}

// NewArchiveResolver creates a resolver for the given archive base URL.
func NewArchiveResolver(baseURL string) *ArchiveResolver {
	return &ArchiveResolver{
		baseURL:   strings.TrimRight(baseURL, "/"),
		extension: "pbf",
	}
}

// Resolve expects "z/x/y" with an optional extension on the last segment.
func (a *ArchiveResolver) Resolve(rest string) (string, error) {
	z, x, y, err := parseTileCoords(rest)
	if err != nil {
		return "", err
	}
	flipped := (1 << z) - 1 - y
	return fmt.Sprintf("%s/%d/%d/%d.%s", a.baseURL, z, x, flipped, a.extension), nil
}

// OverlayURLFunc returns the current overlay URL for a session, or an error
// when the session is unknown or has no loaded document yet.
type OverlayURLFunc func(sessionID string) (string, error)

// OverlayResolver resolves the om scheme: the path remainder is a session
// identifier and the upstream URL is that session's current overlay raster.
type OverlayResolver struct {
	urlFor OverlayURLFunc
}

// NewOverlayResolver creates a resolver backed by the session manager.
func NewOverlayResolver(urlFor OverlayURLFunc) *OverlayResolver {
	return &OverlayResolver{urlFor: urlFor}
}

func (o *OverlayResolver) Resolve(rest string) (string, error) {
	sessionID := strings.TrimSuffix(rest, "/")
	if sessionID == "" {
		return "", fmt.Errorf("om scheme requires a session id")
	}
	u, err := o.urlFor(sessionID)
	if err != nil {
		return "", err
	}
	if u == "" {
		return "", fmt.Errorf("session %s has no overlay yet", sessionID)
	}
	return u, nil
}

func parseTileCoords(rest string) (z, x, y int, err error) {
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("tile path %q: want z/x/y", rest)
	}
	last := parts[2]
	if i := strings.IndexByte(last, '.'); i >= 0 {
		last = last[:i]
	}

	z, err = strconv.Atoi(parts[0])
	if err == nil {
		x, err = strconv.Atoi(parts[1])
	}
	if err == nil {
		y, err = strconv.Atoi(last)
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("tile path %q: %w", rest, err)
	}
	if z < 0 || z > 22 || x < 0 || y < 0 || x >= 1<<z || y >= 1<<z {
		return 0, 0, 0, fmt.Errorf("tile coordinates %d/%d/%d out of range", z, x, y)
	}
	return z, x, y, nil
}
