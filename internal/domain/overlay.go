package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Data endpoints. Domains operated on DWD infrastructure are served from a
// dedicated host; everything else comes from the shared tile endpoint. Both
// the endpoint rule and the overlay path layout are external contracts and
// must match the publishing side byte-for-byte.
const (
	DWDEndpoint     = "https://s3.servert.ch"
	DefaultEndpoint = "https://map-tiles.open-meteo.com"

	dwdDomainPrefix  = "dwd_"
	overlayExtension = "om"
)

// EndpointFor returns the data endpoint serving the given domain.
func EndpointFor(domainID string) string {
	if strings.HasPrefix(domainID, dwdDomainPrefix) {
		return DWDEndpoint
	}
	return DefaultEndpoint
}

// BuildOverlayURL formats the fetch URL of the overlay raster for one
// (domain, variable, model run, display time) combination:
//
//	<endpoint>/data_spatial/<domain>/<YYYY>/<MM>/<DD>/<HHMM>Z/<YYYY-MM-DDTHHMM>.om?variable=<name>
//
// All date fields are zero-padded UTC.
func BuildOverlayURL(domainID, variable string, modelRun, displayTime time.Time) string {
	run := modelRun.UTC()
	return fmt.Sprintf("%s/data_spatial/%s/%04d/%02d/%02d/%02d%02dZ/%s.%s?variable=%s",
		EndpointFor(domainID),
		domainID,
		run.Year(), int(run.Month()), run.Day(),
		run.Hour(), run.Minute(),
		displayTime.UTC().Format("2006-01-02T1504"),
		overlayExtension,
		url.QueryEscape(variable),
	)
}

// MetadataURL returns the location of a domain's latest-run metadata document.
func MetadataURL(domainID string) string {
	return fmt.Sprintf("%s/data_spatial/%s/latest.json", EndpointFor(domainID), domainID)
}

// InitialDisplayTime returns now rounded up to the next whole UTC hour (zero
// minutes, seconds, nanoseconds). It is computed once per session at creation
// and not recomputed afterwards.
func InitialDisplayTime() time.Time {
	now := clock.Now().UTC()
	truncated := now.Truncate(time.Hour)
	if now.After(truncated) {
		return truncated.Add(time.Hour)
	}
	return truncated
}
