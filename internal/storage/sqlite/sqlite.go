// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. It performs batched INSERTs inside a transaction; SQLite does
// not have a dedicated bulk-load API like Postgres COPY, but transactions
// keep performance acceptable for moderate volumes.
//
// The package also exposes ReadQuery so a SQLite database can serve as a
// pipeline source.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cleanse/internal/storage"
	"cleanse/internal/storage/ddl"
	"cleanse/pkg/records"
)

// Repository is a SQLite-backed implementation of storage.Repository. The
// destination table is created on first Write when it does not exist;
// columns are declared untyped and rely on SQLite's dynamic typing.
type Repository struct {
	db    *sql.DB
	table string
}

// New opens a SQLite connection using the provided DSN.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:cleaned.db?cache=shared"
//	"cleaned.db"
func New(ctx context.Context, dsn, table string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, table: table}, nil
}

// Write inserts the dataset into the configured table using a single
// transaction and a prepared INSERT statement.
func (r *Repository) Write(ctx context.Context, d *records.Dataset) (int64, error) {
	columns, rows := storage.Rows(d)
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: dataset has no columns")
	}
	if err := r.ensureTable(ctx, d); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(r.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() { r.db.Close() }

// ensureTable creates the destination table when absent, with affinities
// inferred from the dataset.
func (r *Repository) ensureTable(ctx context.Context, d *records.Dataset) error {
	stmt, err := ddl.CreateTable(ddl.Infer(r.table, d), ddl.SQLite)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	return nil
}

// ReadQuery runs a SELECT against a SQLite database and returns the result
// as a dataset. SQL NULL maps to the missing sentinel.
func ReadQuery(ctx context.Context, dsn, query string) (*records.Dataset, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}

	ds := records.New(columns)
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		rec := make(records.Record, len(columns))
		for i, col := range columns {
			rec[col] = normalizeValue(vals[i])
		}
		ds.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return ds, nil
}

// normalizeValue converts driver scan results into record values.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return New(ctx, cfg.DSN, cfg.Table)
	})
}
