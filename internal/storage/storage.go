// Package storage abstracts the database sinks a cleaned dataset can be
// written to. Concrete backends live in subpackages and register themselves
// with the factory in init; importing storage/all enables every built-in
// backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"cleanse/pkg/records"
)

// Config selects and configures a dataset sink.
type Config struct {
	// Kind selects the registered backend, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the destination table name. Backends accept qualified names
	// ("public.bugs") where the engine supports schemas.
	Table string
}

// Repository persists datasets. Write returns the number of rows written.
type Repository interface {
	Write(ctx context.Context, d *records.Dataset) (int64, error)
	Close()
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a backend available under kind. Backends call Register from
// init; a duplicate kind panics since it indicates a wiring bug.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("storage: duplicate backend %q", kind))
	}
	registry[kind] = f
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := registry[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q (known: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rows flattens a dataset into its ordered columns and driver-ready rows.
// Values are passed through Bind.
func Rows(d *records.Dataset) ([]string, [][]any) {
	rows := make([][]any, 0, d.Len())
	for _, rec := range d.Records {
		row := make([]any, len(d.Columns))
		for i, col := range d.Columns {
			row[i] = Bind(rec[col])
		}
		rows = append(rows, row)
	}
	return d.Columns, rows
}

// Bind converts a record value into a type every supported driver can bind:
// nil, string, int64, float64, bool or time.Time. Numbers kept as
// json.Number become strings; list values are re-encoded as JSON text.
func Bind(v any) any {
	switch t := v.(type) {
	case nil, string, int64, float64, bool, time.Time:
		return t
	case int:
		return int64(t)
	case json.Number:
		return t.String()
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
