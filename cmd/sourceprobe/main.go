package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cleanse/internal/datasource"
	"cleanse/internal/datasource/file"
	"cleanse/internal/datasource/httpsrc"
	"cleanse/internal/parser"
	csvparser "cleanse/internal/parser/csv"
	jsonparser "cleanse/internal/parser/json"
	"cleanse/internal/quality"
)

// main is the entrypoint for the source-profiling CLI. It reads a raw CSV or
// JSON source, parses it the same way the pipeline would, and prints a
// per-column profile as JSON: value types, missing counts, cardinality, and
// sample values.
//
// The profile is meant to guide hand-writing a pipeline configuration for
// cmd/cleanse.
func main() {
	var (
		flagPath = flag.String(
			"path",
			"",
			"Local path of the source file",
		)
		flagURL = flag.String(
			"url",
			"",
			"URL of the source file; used when -path is empty",
		)
		flagFormat = flag.String(
			"format",
			"",
			"Source format: csv|json; inferred from the file extension when empty",
		)
		flagComma = flag.String(
			"comma",
			",",
			"CSV field delimiter (single character)",
		)
		flagPretty = flag.Bool(
			"pretty",
			true,
			"Pretty-print JSON output",
		)
	)
	flag.Parse()

	if *flagPath == "" && *flagURL == "" {
		fmt.Fprintln(os.Stderr, "missing -path or -url")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var src datasource.Source
	name := *flagPath
	if name != "" {
		src = file.NewLocal(name)
	} else {
		name = *flagURL
		src = httpsrc.NewRemote(name, httpsrc.Config{})
	}

	p, err := buildParser(name, *flagFormat, *flagComma)
	if err != nil {
		log.Fatalf("probe: %v", err)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		log.Fatalf("probe: open %s: %v", name, err)
	}
	defer rc.Close()

	d, skipped, err := p.Parse(rc)
	if err != nil {
		log.Fatalf("probe: parse %s: %v", name, err)
	}
	if skipped > 0 {
		log.Printf("probe: skipped %d malformed rows in %s", skipped, name)
	}

	prof := quality.ProfileDataset(d)
	enc := json.NewEncoder(os.Stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(prof); err != nil {
		log.Fatalf("encode profile: %v", err)
	}
}

// buildParser resolves the parser from an explicit format, falling back to
// the file extension. CSV sources must carry a header row; headerless files
// need a config mapping to name their columns and belong in cmd/cleanse.
func buildParser(name, format, comma string) (parser.Parser, error) {
	if format == "" {
		switch {
		case strings.HasSuffix(name, ".csv"):
			format = "csv"
		case strings.HasSuffix(name, ".json"), strings.HasSuffix(name, ".ndjson"):
			format = "json"
		default:
			return nil, fmt.Errorf("cannot infer format of %s, pass -format", name)
		}
	}
	switch format {
	case "csv":
		delim := []rune(comma)
		if len(delim) != 1 {
			return nil, fmt.Errorf("comma must be a single character, got %q", comma)
		}
		return csvparser.NewParser(csvparser.Options{
			HasHeader: true,
			Comma:     delim[0],
			TrimSpace: true,
		}), nil
	case "json":
		return jsonparser.NewParser(jsonparser.Options{AllowArrays: true}), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
