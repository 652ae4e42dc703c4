package quality

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cleanse/pkg/records"
)

// maxDistinct caps the per-column distinct tally so profiling a high-cardinality
// column stays cheap. Once the cap is hit, Distinct reports the cap and
// DistinctCapped is set.
const maxDistinct = 1000

// maxSamples is the number of example values kept per column.
const maxSamples = 5

// ColumnProfile describes one column of a dataset sample.
type ColumnProfile struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Missing        int      `json:"missing"`
	Distinct       int      `json:"distinct"`
	DistinctCapped bool     `json:"distinct_capped,omitempty"`
	Samples        []string `json:"samples,omitempty"`
}

// Profile is the per-column breakdown of a dataset, ordered by column.
type Profile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// ProfileDataset inspects every column and reports its value type, missing
// count, distinct cardinality, and a handful of sample values. The type is
// the single Go type seen in the column, or "mixed" when values disagree,
// or "empty" when every value is missing.
func ProfileDataset(d *records.Dataset) Profile {
	p := Profile{
		Rows:    d.Len(),
		Columns: make([]ColumnProfile, 0, len(d.Columns)),
	}
	for _, col := range d.Columns {
		p.Columns = append(p.Columns, profileColumn(d, col))
	}
	return p
}

func profileColumn(d *records.Dataset, col string) ColumnProfile {
	cp := ColumnProfile{Name: col, Type: "empty"}
	seen := make(map[string]struct{})
	for _, rec := range d.Records {
		v, ok := rec[col]
		if !ok || v == nil {
			cp.Missing++
			continue
		}
		t := typeName(v)
		switch cp.Type {
		case "empty":
			cp.Type = t
		case t:
		default:
			cp.Type = "mixed"
		}
		key := render(v)
		if _, dup := seen[key]; !dup {
			if len(seen) >= maxDistinct {
				cp.DistinctCapped = true
			} else {
				seen[key] = struct{}{}
			}
		}
	}
	cp.Distinct = len(seen)
	cp.Samples = sampleValues(seen)
	return cp
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "float"
	case int64:
		return "int"
	case bool:
		return "bool"
	case time.Time:
		return "timestamp"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

func sampleValues(seen map[string]struct{}) []string {
	if len(seen) == 0 {
		return nil
	}
	all := make([]string, 0, len(seen))
	for k := range seen {
		all = append(all, k)
	}
	sort.Strings(all)
	if len(all) > maxSamples {
		all = all[:maxSamples]
	}
	return all
}
