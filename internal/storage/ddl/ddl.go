// Package ddl infers destination table definitions from a cleaned dataset
// and renders CREATE TABLE statements for the storage backends. Types are
// inferred from the Go values the cleaning stages leave behind, so a typed
// table matches what the sink will bind.
package ddl

import (
	"fmt"
	"strings"
	"time"

	"cleanse/pkg/records"
)

// Kind is a backend-neutral column type.
type Kind int

const (
	// KindText is the fallback for string data and mixed columns.
	KindText Kind = iota
	KindFloat
	KindInt
	KindBool
	KindTimestamp
)

// ColumnDef describes one destination column.
type ColumnDef struct {
	Name string
	Kind Kind
}

// TableDef describes a destination table, possibly schema-qualified.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect maps neutral kinds onto engine type names.
type Dialect struct {
	Text      string
	Float     string
	Int       string
	Bool      string
	Timestamp string
}

// Postgres is the dialect used by the pgx sink.
var Postgres = Dialect{
	Text:      "text",
	Float:     "double precision",
	Int:       "bigint",
	Bool:      "boolean",
	Timestamp: "timestamptz",
}

// SQLite is nominal: the engine types dynamically, but declared affinities
// document intent.
var SQLite = Dialect{
	Text:      "TEXT",
	Float:     "REAL",
	Int:       "INTEGER",
	Bool:      "INTEGER",
	Timestamp: "TEXT",
}

// Infer derives a table definition from the dataset's columns and values. A
// column whose non-missing values share one Go type gets that type; mixed or
// all-missing columns fall back to text.
func Infer(table string, d *records.Dataset) TableDef {
	cols := make([]ColumnDef, 0, len(d.Columns))
	for _, name := range d.Columns {
		cols = append(cols, ColumnDef{Name: name, Kind: inferKind(name, d)})
	}
	return TableDef{FQN: table, Columns: cols}
}

func inferKind(name string, d *records.Dataset) Kind {
	kind := KindText
	seen := false
	for _, rec := range d.Records {
		v := rec[name]
		if v == nil {
			continue
		}
		k := kindOf(v)
		if !seen {
			kind, seen = k, true
			continue
		}
		if k != kind {
			return KindText
		}
	}
	return kind
}

func kindOf(v any) Kind {
	switch v.(type) {
	case float64:
		return KindFloat
	case int, int64:
		return KindInt
	case bool:
		return KindBool
	case time.Time:
		return KindTimestamp
	default:
		return KindText
	}
}

// CreateTable renders an idempotent CREATE TABLE statement for the dialect.
func CreateTable(t TableDef, dialect Dialect) (string, error) {
	if t.FQN == "" {
		return "", fmt.Errorf("ddl: missing table name")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: no columns")
	}
	parts := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", quoteIdent(c.Name), typeName(c.Kind, dialect)))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteFQN(t.FQN),
		strings.Join(parts, ", "),
	), nil
}

func typeName(k Kind, d Dialect) string {
	switch k {
	case KindFloat:
		return d.Float
	case KindInt:
		return d.Int
	case KindBool:
		return d.Bool
	case KindTimestamp:
		return d.Timestamp
	default:
		return d.Text
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// quoteFQN quotes each dot-separated part of a qualified name.
func quoteFQN(f string) string {
	ps := strings.Split(f, ".")
	for i := range ps {
		ps[i] = quoteIdent(ps[i])
	}
	return strings.Join(ps, ".")
}
