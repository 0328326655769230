// cmd/tools/unitmix-extract/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"listing-unitmix/internal/common/config"
	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
	"listing-unitmix/internal/unitmix/extractor"
	eum "listing-unitmix/internal/workers/extraction/extract-unit-mix"
)

// Runs the extraction pipeline on one listing without Zeebe or Redis.
//
//	unitmix-extract -in listing.json
//	echo '{"description":"duplex ..."}' | unitmix-extract
func main() {
	in := flag.String("in", "-", "Listing metadata JSON file, - for stdin")
	configPath := flag.String("config", "", "Optional config file for extraction tuning")
	level := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pretty := flag.Bool("pretty", true, "Indent the JSON output")
	flag.Parse()

	log := logger.NewStructured(*level, "console")

	listing, err := readListing(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading listing: %v\n", err)
		os.Exit(1)
	}

	extractionCfg := extractor.DefaultConfig()
	if *configPath != "" {
		appCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		extractionCfg = eum.NewConfig(appCfg).Extraction
	}

	result, err := extractor.New(extractionCfg, nil, log).Extract(context.Background(), listing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
		os.Exit(1)
	}
}

func readListing(path string) (models.ListingMetadata, error) {
	var listing models.ListingMetadata

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return listing, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&listing); err != nil {
		return listing, fmt.Errorf("decode listing: %w", err)
	}
	return listing, nil
}
