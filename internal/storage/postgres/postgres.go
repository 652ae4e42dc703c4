// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. Datasets are bulk-loaded with COPY; the destination table is created
// with inferred column types when absent.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleanse/internal/storage"
	"cleanse/internal/storage/ddl"
	"cleanse/pkg/records"
)

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// New constructs a Repository from a pgxpool DSN and a target table name,
// which may be schema-qualified ("public.bugs").
func New(ctx context.Context, dsn, table string) (*Repository, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	return &Repository{pool: pool, table: table}, nil
}

// Write bulk-loads the dataset into the configured table via COPY. Values in
// columns inferred as text are rendered to strings so mixed columns COPY
// cleanly; typed columns keep their native Go values.
func (r *Repository) Write(ctx context.Context, d *records.Dataset) (int64, error) {
	columns, rows := storage.Rows(d)
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: dataset has no columns")
	}
	def := ddl.Infer(r.table, d)
	if err := r.ensureTable(ctx, def); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := r.pool.CopyFrom(ctx, tableIdent(r.table), columns, pgx.CopyFromRows(bindRows(def, rows)))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into %s: %w", r.table, err)
	}
	return n, nil
}

// Close releases the connection pool.
func (r *Repository) Close() { r.pool.Close() }

// ensureTable creates the destination table when absent. COPY into an
// existing table with richer types is unaffected.
func (r *Repository) ensureTable(ctx context.Context, def ddl.TableDef) error {
	stmt, err := ddl.CreateTable(def, ddl.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if _, err := r.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// bindRows aligns row values with the inferred column kinds: text columns
// have every non-nil value rendered as a string, other kinds pass through
// for pgx's native encoding.
func bindRows(def ddl.TableDef, rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		conv := make([]any, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			if def.Columns[j].Kind == ddl.KindText {
				conv[j] = renderText(v)
				continue
			}
			conv[j] = v
		}
		out[i] = conv
	}
	return out
}

func renderText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// tableIdent splits a possibly schema-qualified name into a pgx identifier.
func tableIdent(name string) pgx.Identifier {
	return pgx.Identifier(strings.Split(name, "."))
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return New(ctx, cfg.DSN, cfg.Table)
	})
}
