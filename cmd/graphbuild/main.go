// Command graphbuild calibrates a raw node-link network and writes the
// snapshot loaded by the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/globalroute/navigator/pkg/graph"
)

func main() {
	in := flag.String("in", "", "Node-link JSON network (nodes with latitude/longitude/country_code, edges with mode/distance)")
	out := flag.String("out", "network.grs", "Snapshot file to write")
	profilesPath := flag.String("profiles", "", "Optional YAML file overriding the per-mode profiles")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: graphbuild -in network.json [-out network.grs] [-profiles modes.yaml]")
		os.Exit(2)
	}

	profiles, err := loadProfiles(*profilesPath)
	if err != nil {
		log.Fatalf("Unable to load mode profiles: %v", err)
	}

	raw, err := graph.LoadFile(*in)
	if err != nil {
		log.Fatalf("Unable to read network: %v", err)
	}

	g, cal, err := graph.Calibrate(raw, profiles)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}

	if err := graph.SaveSnapshot(*out, g); err != nil {
		log.Fatalf("Unable to write snapshot: %v", err)
	}

	log.Printf("Wrote %s: %d nodes, %d edges, time window [%.2f, %.2f] h, price window [%.2f, %.2f]",
		*out, g.Len(), g.EdgeCount(), cal.Time.Min, cal.Time.Max, cal.Price.Min, cal.Price.Max)
}

// loadProfiles merges the YAML overrides (keyed by mode name) over
// graph.DefaultProfiles.
func loadProfiles(path string) (map[graph.Mode]graph.ModeProfile, error) {
	profiles := make(map[graph.Mode]graph.ModeProfile, len(graph.DefaultProfiles))
	for m, p := range graph.DefaultProfiles {
		profiles[m] = p
	}
	if path == "" {
		return profiles, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var overrides map[graph.Mode]graph.ModeProfile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&overrides); err != nil {
		return nil, fmt.Errorf("YAML syntax error in profiles: %w", err)
	}
	for m, p := range overrides {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q", graph.ErrInvalidMode, m)
		}
		profiles[m] = p
	}
	return profiles, nil
}
