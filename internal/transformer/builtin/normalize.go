package builtin

import (
	"strings"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// Normalize trims surrounding whitespace (including the no-break-space
// artifact " " left by bad encodings) from every string value and turns
// empty strings into nil. Runs first so the mapping stages see exact keys.
//
// RowsAffected counts records where at least one field changed.
type Normalize struct {
	Reason string
}

func (Normalize) Name() string { return "normalize" }

func (n Normalize) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := in.Clone()
	touched := 0
	for _, r := range out.Records {
		changed := false
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			cleaned := strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
			if cleaned == "" {
				r[k] = nil
				changed = true
				continue
			}
			if cleaned != s {
				r[k] = cleaned
				changed = true
			}
		}
		if changed {
			touched++
		}
	}
	return out, transformer.Result{
		Description:  "Normalized whitespace in text fields",
		RowsAffected: touched,
		Reason:       n.Reason,
	}
}
