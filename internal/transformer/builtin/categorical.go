// Package builtin contains the reusable cleaning stages: categorical
// remapping, timestamp parsing, numeric range validation, identifier
// canonicalization, structural address validation, keyword classification,
// de-duplication, and default filling.
//
// Every stage follows the same contract: Apply returns a new dataset (the
// input is never mutated) plus a Result whose RowsAffected follows the
// stage's own counting rule, documented per stage. Single-value failures
// always degrade to the missing sentinel (nil); stages never return errors.
package builtin

import (
	"fmt"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// RecognizedValues maps raw spelling variants of one field to a canonical
// value drawn from a small fixed set (e.g. Critical/High/Medium/Low). Inputs
// absent from the map degrade to missing; that is a flagged data-quality gap,
// not an error.
type RecognizedValues map[string]string

// clone copies the map so a stage owns its lookup table. Concurrent pipelines
// must never share mutable mapping state.
func (m RecognizedValues) clone() RecognizedValues {
	out := make(RecognizedValues, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Categorical remaps one field through a RecognizedValues table.
//
// Semantics:
//   - non-nil value present as a key  -> canonical value
//   - non-nil value absent from map   -> nil (missing)
//   - nil stays nil
//
// Canonical values are fixed points: re-applying the stage leaves them
// unchanged as long as the table maps each canonical value to itself.
//
// RowsAffected counts originally non-nil inputs, i.e. attempted
// normalizations regardless of mapping success.
type Categorical struct {
	Field  string
	Values RecognizedValues
	Reason string
}

// NewCategorical copies the value table so later edits by the caller cannot
// leak into a running pipeline.
func NewCategorical(field string, values RecognizedValues, reason string) Categorical {
	return Categorical{Field: field, Values: values.clone(), Reason: reason}
}

func (c Categorical) Name() string { return "categorical:" + c.Field }

func (c Categorical) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := in.Clone()
	affected := 0
	for _, r := range out.Records {
		v, ok := r[c.Field]
		if !ok || v == nil {
			continue
		}
		affected++
		s, isStr := v.(string)
		if !isStr {
			s = fmt.Sprint(v)
		}
		if canon, ok := c.Values[s]; ok {
			r[c.Field] = canon
		} else {
			r[c.Field] = nil
		}
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Standardized %s values", c.Field),
		RowsAffected: affected,
		Reason:       c.Reason,
	}
}

// FillDefault replaces remaining missing values of one field with a
// field-specific sentinel label (e.g. "Unknown"). RowsAffected counts values
// actually filled.
type FillDefault struct {
	Field   string
	Default any
	Reason  string
}

func (f FillDefault) Name() string { return "fill:" + f.Field }

func (f FillDefault) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := in.Clone()
	filled := 0
	for _, r := range out.Records {
		if r.Missing(f.Field) {
			r[f.Field] = f.Default
			filled++
		}
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Filled missing %s values with %v", f.Field, f.Default),
		RowsAffected: filled,
		Reason:       f.Reason,
	}
}
