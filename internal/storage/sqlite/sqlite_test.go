package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"cleanse/pkg/records"
)

func TestWriteAndReadBack(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cleaned.db")
	ctx := context.Background()

	repo, err := New(ctx, dsn, "logs")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()

	ds := records.New([]string{"user_id", "response_time_ms"})
	ds.Append(
		records.Record{"user_id": "USR-1001", "response_time_ms": 120.5},
		records.Record{"user_id": nil, "response_time_ms": nil},
	)

	n, err := repo.Write(ctx, ds)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	back, err := ReadQuery(ctx, dsn, "SELECT user_id, response_time_ms FROM logs ORDER BY user_id")
	if err != nil {
		t.Fatalf("ReadQuery: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("rows = %d", back.Len())
	}
	// NULLs sort first in SQLite.
	if v := back.Records[0]["user_id"]; v != nil {
		t.Errorf("user_id = %v, want nil", v)
	}
	if v := back.Records[1]["user_id"]; v != "USR-1001" {
		t.Errorf("user_id = %v", v)
	}
	if v := back.Records[1]["response_time_ms"]; v != 120.5 {
		t.Errorf("response_time_ms = %v (%T)", v, v)
	}
}

func TestWriteEmptyDatasetCreatesTable(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cleaned.db")
	ctx := context.Background()

	repo, err := New(ctx, dsn, "logs")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()

	n, err := repo.Write(ctx, records.New([]string{"a"}))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 0 {
		t.Errorf("written = %d", n)
	}
	back, err := ReadQuery(ctx, dsn, "SELECT a FROM logs")
	if err != nil {
		t.Fatalf("ReadQuery: %v", err)
	}
	if back.Len() != 0 {
		t.Errorf("rows = %d", back.Len())
	}
}

func TestNewRejectsBlank(t *testing.T) {
	if _, err := New(context.Background(), " ", "t"); err == nil {
		t.Error("expected error for blank DSN")
	}
	if _, err := New(context.Background(), "x.db", ""); err == nil {
		t.Error("expected error for blank table")
	}
}
