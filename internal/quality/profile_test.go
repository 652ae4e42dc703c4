package quality

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"cleanse/pkg/records"
)

func TestProfileDataset(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	d := records.New([]string{"severity", "score", "seen_at", "note"})
	d.Append(
		records.Record{"severity": "High", "score": 1.5, "seen_at": ts, "note": nil},
		records.Record{"severity": "High", "score": 2.0, "seen_at": nil, "note": nil},
		records.Record{"severity": "Low", "score": int64(3), "seen_at": nil, "note": nil},
	)
	p := ProfileDataset(d)

	if p.Rows != 3 || len(p.Columns) != 4 {
		t.Fatalf("shape: rows=%d cols=%d", p.Rows, len(p.Columns))
	}

	byName := make(map[string]ColumnProfile, len(p.Columns))
	for _, c := range p.Columns {
		byName[c.Name] = c
	}

	sev := byName["severity"]
	if sev.Type != "string" || sev.Missing != 0 || sev.Distinct != 2 {
		t.Errorf("severity = %+v", sev)
	}
	if !reflect.DeepEqual(sev.Samples, []string{"High", "Low"}) {
		t.Errorf("severity samples = %v", sev.Samples)
	}

	if got := byName["score"].Type; got != "mixed" {
		t.Errorf("score type = %q, want mixed", got)
	}

	seen := byName["seen_at"]
	if seen.Type != "timestamp" || seen.Missing != 2 {
		t.Errorf("seen_at = %+v", seen)
	}
	if !reflect.DeepEqual(seen.Samples, []string{"2024-01-15T10:30:00Z"}) {
		t.Errorf("seen_at samples = %v", seen.Samples)
	}

	note := byName["note"]
	if note.Type != "empty" || note.Missing != 3 || note.Distinct != 0 || note.Samples != nil {
		t.Errorf("note = %+v", note)
	}
}

func TestProfileColumnOrder(t *testing.T) {
	d := records.New([]string{"b", "a"})
	d.Append(records.Record{"b": "1", "a": "2"})
	p := ProfileDataset(d)
	if p.Columns[0].Name != "b" || p.Columns[1].Name != "a" {
		t.Fatalf("column order not preserved: %+v", p.Columns)
	}
}

func TestProfileDistinctCap(t *testing.T) {
	d := records.New([]string{"id"})
	for i := 0; i < maxDistinct+10; i++ {
		d.Append(records.Record{"id": fmt.Sprintf("row-%04d", i)})
	}
	p := ProfileDataset(d)
	id := p.Columns[0]
	if id.Distinct != maxDistinct || !id.DistinctCapped {
		t.Fatalf("cap not applied: %+v", id)
	}
	if len(id.Samples) != maxSamples {
		t.Fatalf("samples = %d, want %d", len(id.Samples), maxSamples)
	}
}
