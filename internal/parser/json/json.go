// Package json implements a JSON parser that turns JSON objects into a
// dataset.
//
// It is deliberately simple and conservative:
//
//   - Supports newline-delimited JSON objects (NDJSON) and multiple JSON
//     objects in a stream.
//   - A top-level JSON array of objects is accepted when AllowArrays is set,
//     which matches issue-tracker export endpoints.
//   - Non-object top-level values are rejected.
//
// Numbers decode as json.Number so downstream mapping decides how to render
// them; nested arrays (e.g. label lists) are preserved as []any.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"cleanse/pkg/records"
)

// Options configures JSON parsing.
type Options struct {
	// AllowArrays accepts a top-level JSON array of objects.
	AllowArrays bool
}

// Parser reads a stream of JSON objects into a dataset. The dataset column
// list is the sorted union of keys seen across all objects, since JSON
// object order carries no meaning.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads all objects from r. The skipped count reports non-object
// values encountered in an NDJSON stream.
func (p *Parser) Parse(r io.Reader) (*records.Dataset, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var recs []records.Record
	var skipped int

	for {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, fmt.Errorf("json parser: decode: %w", err)
		}

		switch v := raw.(type) {
		case map[string]any:
			recs = append(recs, records.Record(v))
		case []any:
			if !p.opt.AllowArrays {
				return nil, 0, fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
			}
			for i, elem := range v {
				obj, ok := elem.(map[string]any)
				if !ok {
					return nil, 0, fmt.Errorf("json parser: element %d in array is not an object", i)
				}
				recs = append(recs, records.Record(obj))
			}
		default:
			skipped++
		}
	}

	ds := records.New(columnsOf(recs))
	ds.Append(recs...)
	return ds, skipped, nil
}

// columnsOf returns the sorted union of keys across recs.
func columnsOf(recs []records.Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range recs {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
