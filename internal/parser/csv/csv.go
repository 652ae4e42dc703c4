// Package csv implements a streaming CSV parser for real-world exports:
// optional Unicode scrubbing, header canonicalization, and soft-fail handling
// of malformed rows. It avoids whole-file buffering and can handle very large
// inputs safely.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cleanse/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record. Rows
	// with a different width are skipped (soft-fail) and counted. It also
	// names headerless columns col_0..col_N-1.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys (e.g., localization
	// to snake_case). Only applies when HasHeader is true.
	HeaderMap map[string]string

	// ScrubUnicode rewrites the byte stream before the CSV reader sees it:
	// NFC normalization plus removal of format characters (BOMs, zero-width
	// joiners) that log exporters occasionally leak into field values.
	ScrubUnicode bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// scrubber builds the streaming transform used when ScrubUnicode is set.
func scrubber() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		norm.NFC,
	)
}

// Parse consumes CSV records from r and returns the parsed dataset along with
// the number of rows that were skipped due to parse errors or field-count
// mismatches. It never buffers the entire input.
func (p *Parser) Parse(r io.Reader) (*records.Dataset, int, error) {
	if p.opt.ScrubUnicode {
		r = transform.NewReader(r, scrubber())
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	var headers []string
	var skipped int

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	} else {
		return nil, 0, fmt.Errorf("csv parser requires has_header or expected_fields")
	}

	ds := records.New(headers)

	limit := 400
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < limit {
				log.Printf("Skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < limit {
				log.Printf("Skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		ds.Append(rec)
	}

	return ds, skipped, nil
}

// emptyToNil converts an empty string to the missing sentinel; all other
// values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (lowercase, spaces to underscores). It
// also strips a UTF-8 BOM from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
