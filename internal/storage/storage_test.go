package storage

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"cleanse/pkg/records"
)

type fakeRepo struct{ writes int }

func (f *fakeRepo) Write(ctx context.Context, d *records.Dataset) (int64, error) {
	f.writes++
	return int64(d.Len()), nil
}
func (f *fakeRepo) Close() {}

func TestRegistry(t *testing.T) {
	fake := &fakeRepo{}
	Register("fake", func(ctx context.Context, cfg Config) (Repository, error) {
		if cfg.DSN != "dsn" || cfg.Table != "t" {
			t.Errorf("cfg = %+v", cfg)
		}
		return fake, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake", DSN: "dsn", Table: "t"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo != Repository(fake) {
		t.Error("factory not used")
	}

	if _, err := New(context.Background(), Config{Kind: "bogus"}); err == nil {
		t.Error("expected error for unknown kind")
	}

	found := false
	for _, k := range Kinds() {
		if k == "fake" {
			found = true
		}
	}
	if !found {
		t.Errorf("Kinds() = %v", Kinds())
	}
}

func TestRows(t *testing.T) {
	ds := records.New([]string{"a", "b"})
	ds.Append(
		records.Record{"a": "x", "b": nil},
		records.Record{"a": "y", "b": 3.5},
	)
	cols, rows := Rows(ds)
	if !reflect.DeepEqual(cols, []string{"a", "b"}) {
		t.Errorf("cols = %v", cols)
	}
	want := [][]any{{"x", nil}, {"y", 3.5}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v", rows)
	}
}

func TestBind(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"s", "s"},
		{int(7), int64(7)},
		{3.5, 3.5},
		{ts, ts},
		{json.Number("1042"), "1042"},
		{[]any{"bug", "critical"}, `["bug","critical"]`},
	}
	for _, tt := range tests {
		if got := Bind(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Bind(%v) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
