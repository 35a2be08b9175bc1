// Command inspect fetches the latest-run metadata for one or all catalogue
// domains, runs variable classification, and checks the derived menu
// structure for consistency. It is a development aid for verifying what the
// data service currently publishes.
//
// Usage:
//
//	go run ./cmd/inspect                 # all catalogue domains
//	go run ./cmd/inspect -domain gfs_global
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/weather-map-viewer/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-map-viewer/internal/domain"
	"github.com/couchcryptid/weather-map-viewer/internal/observability"
)

// phase tracks pass/fail for one inspected domain.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	domainID := flag.String("domain", "", "inspect a single domain instead of the whole catalogue")
	timeout := flag.Duration("timeout", 10*time.Second, "per-fetch timeout")
	flag.Parse()

	var targets []domain.DomainDescriptor
	if *domainID != "" {
		d, ok := domain.DomainByID(*domainID)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown domain %q\n", *domainID)
			os.Exit(1)
		}
		targets = []domain.DomainDescriptor{d}
	} else {
		targets = domain.Domains
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := openmeteo.NewClient(*timeout, observability.NewMetricsForTesting(), logger)

	failed := 0
	for _, d := range targets {
		if !inspect(client, d) {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d domains failed inspection\n", failed, len(targets))
		os.Exit(1)
	}
	fmt.Printf("\nall %d domains passed inspection\n", len(targets))
}

func inspect(client *openmeteo.Client, d domain.DomainDescriptor) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("== %s (%s)\n", d.ID, d.Label)

	doc, err := client.FetchLatest(ctx, d.ID)
	if err != nil {
		fmt.Printf("   FETCH FAILED: %v\n", err)
		return false
	}
	return report(d, doc)
}

// report classifies and checks one fetched document, printing the findings.
func report(d domain.DomainDescriptor, doc domain.MetadataDocument) bool {
	cls := domain.ClassifyVariables(doc.Variables)
	fmt.Printf("   run %s, %d variables, %d menu entries, %d level groups\n",
		doc.ReferenceTime.Format(time.RFC3339), len(doc.Variables), len(cls.Options), len(cls.Groups))

	p := &phase{name: d.ID}
	checkClassification(p, doc, cls)

	if len(doc.Variables) > 0 {
		overlay := domain.BuildOverlayURL(d.ID, doc.Variables[0], doc.ReferenceTime, domain.InitialDisplayTime())
		fmt.Printf("   overlay: %s\n", overlay)
	}

	for prefix, entries := range cls.Groups {
		def, _ := domain.DefaultGroupMember(entries)
		fmt.Printf("   group %-24s %3d levels, default %s\n", prefix, len(entries), def.Variable)
	}

	if !p.passed() {
		for _, e := range p.errors {
			fmt.Printf("   CHECK FAILED: %s\n", e)
		}
		return false
	}
	return true
}

// checkClassification verifies the structural invariants of a derived menu:
// every level-bearing variable lands in exactly one group, group prefixes
// appear exactly once among the options, and scalar names pass through.
func checkClassification(p *phase, doc domain.MetadataDocument, cls domain.Classification) {
	if len(doc.Variables) == 0 {
		p.errorf("empty variable catalogue")
		return
	}

	seen := make(map[string]int)
	for _, opt := range cls.Options {
		seen[opt]++
		if seen[opt] > 1 {
			p.errorf("menu option %q appears %d times", opt, seen[opt])
		}
	}

	membership := make(map[string]string)
	for prefix, entries := range cls.Groups {
		for _, e := range entries {
			if prev, ok := membership[e.Variable]; ok {
				p.errorf("variable %q in groups %q and %q", e.Variable, prev, prefix)
			}
			membership[e.Variable] = prefix
		}
	}

	for _, v := range doc.Variables {
		if !domain.IsLevelBearing(v) {
			if seen[v] == 0 {
				p.errorf("scalar variable %q missing from menu options", v)
			}
			continue
		}
		prefix, ok := domain.LevelPrefix(v)
		if !ok {
			continue // documented drop: no extractable prefix
		}
		if membership[v] != prefix {
			p.errorf("level-bearing variable %q not grouped under %q", v, prefix)
		}
	}
}
