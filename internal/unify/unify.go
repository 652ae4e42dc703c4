// Package unify reconciles heterogeneous source schemas into one target
// schema. Each source declares, per target field, exactly one of: a direct
// rename, a derivation over one or more source fields, or a constant-missing
// fill. Output records gain a "source" tag, sources concatenate in the
// declared order, and row order within a source is preserved.
//
// A source missing a field its mapping requires is a structural fault: the
// whole run aborts with ErrSchemaMismatch before any later stage executes.
package unify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cleanse/internal/transformer/builtin"
	"cleanse/pkg/records"
)

// SourceField tags every unified record with its origin.
const SourceField = "source"

// ErrSchemaMismatch marks a source that lacks a field its declared mapping
// requires.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Kind enumerates how a target field is populated.
type Kind string

const (
	// KindRename copies the value of the From field.
	KindRename Kind = "rename"
	// KindMissing fills the target with nil for every record.
	KindMissing Kind = "missing"
	// KindPrefix renders the From value and prepends Prefix ("GH-" + 1042).
	KindPrefix Kind = "prefix"
	// KindMap looks the From value up in Values; absent keys become nil.
	KindMap Kind = "map"
	// KindClassify derives a category from the From text via keyword rules;
	// no match means nil (the unifier never invents a fallback).
	KindClassify Kind = "classify"
	// KindLabels derives a category from a list-of-labels From field: labels
	// are scanned in order against the substring Rules, then compared
	// (lowercased) against Equals; no hit means nil.
	KindLabels Kind = "labels"
)

// Rule populates one target field for one source.
type Rule struct {
	Target string
	Kind   Kind
	From   string
	Prefix string
	Values builtin.RecognizedValues
	Rules  []builtin.KeywordRule
	Equals map[string]string
}

// Source pairs a source tag with its field rules. Target fields without a
// rule are filled missing.
type Source struct {
	Name  string
	Rules []Rule
}

// Unifier maps N source datasets onto one target schema.
type Unifier struct {
	// Target is the unified field order. The source tag column is prepended
	// automatically when absent.
	Target []string
	// Sources declares the fixed concatenation order.
	Sources []Source
}

// Apply unifies the inputs (keyed by source name) into a single dataset.
func (u Unifier) Apply(inputs map[string]*records.Dataset) (*records.Dataset, error) {
	columns := u.Target
	if !contains(columns, SourceField) {
		columns = append([]string{SourceField}, columns...)
	}
	out := records.New(columns)

	for _, src := range u.Sources {
		in, ok := inputs[src.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no dataset for source %q", ErrSchemaMismatch, src.Name)
		}
		if err := checkRequiredFields(src, in); err != nil {
			return nil, err
		}
		ruleFor := make(map[string]Rule, len(src.Rules))
		for _, r := range src.Rules {
			if !contains(columns, r.Target) {
				return nil, fmt.Errorf("source %q maps unknown target field %q", src.Name, r.Target)
			}
			ruleFor[r.Target] = r
		}
		for _, rec := range in.Records {
			unified := make(records.Record, len(columns))
			unified[SourceField] = src.Name
			for _, col := range columns {
				if col == SourceField {
					continue
				}
				rule, ok := ruleFor[col]
				if !ok {
					unified[col] = nil
					continue
				}
				unified[col] = rule.eval(rec)
			}
			out.Append(unified)
		}
	}
	return out, nil
}

// checkRequiredFields fails fatally when a source lacks a mapped field.
// Columns are authoritative when the source dataset declares them; otherwise
// the first record's key set stands in.
func checkRequiredFields(src Source, in *records.Dataset) error {
	have := map[string]struct{}{}
	for _, c := range in.Columns {
		have[c] = struct{}{}
	}
	if len(have) == 0 && in.Len() > 0 {
		for k := range in.Records[0] {
			have[k] = struct{}{}
		}
	}
	for _, r := range src.Rules {
		if r.Kind == KindMissing || r.From == "" {
			continue
		}
		if _, ok := have[r.From]; !ok {
			return fmt.Errorf("%w: source %q lacks field %q required by mapping for %q",
				ErrSchemaMismatch, src.Name, r.From, r.Target)
		}
	}
	return nil
}

func (r Rule) eval(rec records.Record) any {
	switch r.Kind {
	case KindMissing:
		return nil

	case KindRename:
		v, ok := rec[r.From]
		if !ok {
			return nil
		}
		return v

	case KindPrefix:
		s, ok := renderScalar(rec[r.From])
		if !ok {
			return nil
		}
		return r.Prefix + s

	case KindMap:
		s, ok := renderScalar(rec[r.From])
		if !ok {
			return nil
		}
		if canon, hit := r.Values[s]; hit {
			return canon
		}
		return nil

	case KindClassify:
		s, ok := renderScalar(rec[r.From])
		if !ok {
			return nil
		}
		for _, rule := range r.Rules {
			lower := strings.ToLower(s)
			for _, kw := range rule.Keywords {
				if strings.Contains(lower, kw) {
					return rule.Category
				}
			}
		}
		return nil

	case KindLabels:
		labels, ok := rec[r.From].([]any)
		if !ok {
			return nil
		}
		for _, l := range labels {
			s, ok := renderScalar(l)
			if !ok {
				continue
			}
			lower := strings.ToLower(s)
			for _, rule := range r.Rules {
				for _, kw := range rule.Keywords {
					if strings.Contains(lower, kw) {
						return rule.Category
					}
				}
			}
		}
		for _, l := range labels {
			s, ok := renderScalar(l)
			if !ok {
				continue
			}
			if cat, hit := r.Equals[strings.ToLower(s)]; hit {
				return cat
			}
		}
		return nil
	}
	return nil
}

// renderScalar renders a raw value as a stable string. Integral numbers drop
// the decimal point so JSON-decoded IDs prefix cleanly ("GH-1042", not
// "GH-1042.000000").
func renderScalar(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
