package lineage

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }
}

func TestStepsStrictlyIncreasing(t *testing.T) {
	r := NewAt(fixedClock())
	r.Record("a", 10, 9, 1, "dupes")
	r.Record("b", 9, 9, 4, "labels")
	r.Record("c", 9, 9, 9, "timestamps")

	entries := r.Entries()
	for i, e := range entries {
		if e.Step != i+1 {
			t.Fatalf("entry %d has step %d", i, e.Step)
		}
	}
	// Row counts chain: rows_after of i == rows_before of i+1 for stages
	// that neither add nor remove sources.
	for i := 1; i < len(entries); i++ {
		if entries[i].RowsBefore != entries[i-1].RowsAfter {
			t.Fatalf("row chain broken between steps %d and %d", i, i+1)
		}
	}
}

func TestEntriesAreSnapshots(t *testing.T) {
	r := NewAt(fixedClock())
	r.Record("a", 1, 1, 0, "")
	got := r.Entries()
	got[0].Description = "mutated"
	if r.Entries()[0].Description != "a" {
		t.Fatal("recorder state leaked through Entries")
	}
}

func TestConcurrentRecord(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record("s", 5, 5, 0, "")
		}()
	}
	wg.Wait()
	seen := map[int]bool{}
	for _, e := range r.Entries() {
		if seen[e.Step] {
			t.Fatalf("duplicate step %d", e.Step)
		}
		seen[e.Step] = true
	}
	if r.Len() != 50 {
		t.Fatalf("len = %d, want 50", r.Len())
	}
}

func TestExportDocumentShape(t *testing.T) {
	r := NewAt(fixedClock())
	r.Record("Removed duplicate rows", 120, 113, 7, "redundant entries")
	doc := r.Export("Log File Cleaner", "run-1", FinalStats{
		OriginalRows: 120, CleanedRows: 113, RowsRemoved: 7, RemainingNulls: 12,
	})

	var buf bytes.Buffer
	if err := doc.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"project", "date", "cleaning_steps", "final_stats"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing %q in export document", key)
		}
	}
	stats := m["final_stats"].(map[string]any)
	if stats["rows_removed"].(float64) != 7 {
		t.Fatalf("final_stats wrong: %v", stats)
	}
	steps := m["cleaning_steps"].([]any)
	first := steps[0].(map[string]any)
	for _, key := range []string{"step", "description", "rows_before", "rows_after", "rows_affected", "reason", "timestamp"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("missing %q in lineage entry", key)
		}
	}
}
