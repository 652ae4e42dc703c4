// Package records defines the in-memory data model shared by every pipeline
// stage: a Record is a field-name -> value map, a Dataset is an ordered batch
// of Records plus the column order that gives the batch a tabular shape.
//
// Values are one of: string, float64, int64, time.Time, or nil. nil is the
// missing-value sentinel; stages degrade unusable raw values to nil rather
// than erroring, so a single bad cell never kills a batch.
package records

import "time"

// Record maps field name -> value. Stages treat a nil value (or an absent
// key) as missing.
type Record map[string]any

// Clone returns a shallow copy of the record. Values are immutable types
// (strings, numbers, time.Time), so a shallow copy is a safe snapshot.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Missing reports whether field is absent or nil.
func (r Record) Missing(field string) bool {
	v, ok := r[field]
	return !ok || v == nil
}

// String returns the string value of field, or "" and false when the field
// is missing or not a string.
func (r Record) String(field string) (string, bool) {
	if v, ok := r[field]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// Time returns the time.Time value of field when present.
func (r Record) Time(field string) (time.Time, bool) {
	if v, ok := r[field]; ok {
		if t, ok := v.(time.Time); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Float returns the numeric value of field as float64 when present. Both
// int64 and float64 storage forms are accepted.
func (r Record) Float(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Dataset is an ordered batch of records with an explicit column order.
// After unification every record carries exactly the Columns field set;
// record order is insertion order and is preserved by every stage except
// de-duplication.
type Dataset struct {
	Columns []string
	Records []Record
}

// New returns an empty dataset with the given column order.
func New(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// Append adds records in order.
func (d *Dataset) Append(recs ...Record) { d.Records = append(d.Records, recs...) }

// HasColumn reports whether name is one of the dataset columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep-enough copy: new record maps, shared immutable values.
// Stages that rewrite fields operate on a clone so the caller's snapshot of
// the previous stage output stays inspectable.
func (d *Dataset) Clone() *Dataset {
	out := New(d.Columns)
	out.Records = make([]Record, len(d.Records))
	for i, r := range d.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// MissingCount returns the number of nil (or absent) values for the named
// column across all records.
func (d *Dataset) MissingCount(column string) int {
	n := 0
	for _, r := range d.Records {
		if r.Missing(column) {
			n++
		}
	}
	return n
}

// TotalMissing returns the number of missing cells over all columns.
func (d *Dataset) TotalMissing() int {
	n := 0
	for _, c := range d.Columns {
		n += d.MissingCount(c)
	}
	return n
}
