// Command mockmeta serves fake latest.json metadata documents for every
// catalogue domain, for developing the viewer without reaching the real data
// service. Point the viewer at it with METADATA_TIMEOUT/endpoint overrides or
// an /etc/hosts entry, or use it directly in browser devtools.
//
// Usage:
//
//	go run ./cmd/mockmeta -addr :9090 -reference-time 2024-05-01T06:00
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-map-viewer/internal/domain"
)

// variableSets holds a representative catalogue per domain group. Pressure
// levels only exist in the global models; the mesoscale domains carry the
// surface set.
var (
	surfaceVariables = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"dew_point_2m",
		"apparent_temperature",
		"pressure_msl",
		"cloud_cover",
		"wind_u_component_10m",
		"wind_v_component_10m",
		"wind_gusts_10m",
		"precipitation",
		"cape",
	}
	pressureVariables = []string{
		"temperature_250hPa",
		"temperature_500hPa",
		"temperature_850hPa",
		"geopotential_height_250hPa",
		"geopotential_height_500hPa",
		"geopotential_height_850hPa",
		"wind_u_component_250hPa",
		"wind_u_component_500hPa",
		"wind_u_component_850hPa",
		"wind_v_component_250hPa",
		"wind_v_component_500hPa",
		"wind_v_component_850hPa",
	}
)

func variablesFor(d domain.DomainDescriptor) []string {
	vars := append([]string(nil), surfaceVariables...)
	if d.Grid.Zoom <= 2 { // global models carry pressure levels
		vars = append(vars, pressureVariables...)
	}
	return vars
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	refTimeStr := flag.String("reference-time", "", "model run reference time (2006-01-02T15:04, default: last whole 6h UTC)")
	flag.Parse()

	refTime := time.Now().UTC().Truncate(6 * time.Hour)
	if *refTimeStr != "" {
		t, err := time.Parse("2006-01-02T15:04", *refTimeStr)
		if err != nil {
			log.Fatalf("invalid -reference-time: %v", err)
		}
		refTime = t
	}

	mux := http.NewServeMux()
	for _, d := range domain.Domains {
		doc := map[string]any{
			"reference_time": refTime.Format("2006-01-02T15:04"),
			"variables":      variablesFor(d),
		}
		mux.HandleFunc("GET /data_spatial/"+d.ID+"/latest.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(doc); err != nil {
				log.Printf("encode document: %v", err)
			}
		})
	}

	log.Printf("mock metadata server on %s, reference time %s, %d domains",
		*addr, refTime.Format(time.RFC3339), len(domain.Domains))
	log.Fatal(http.ListenAndServe(*addr, mux))
}
