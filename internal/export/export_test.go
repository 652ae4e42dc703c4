package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cleanse/internal/quality"
	"cleanse/pkg/records"
)

func sample() *records.Dataset {
	ds := records.New([]string{"timestamp", "log_level", "response_time_ms"})
	ds.Append(
		records.Record{
			"timestamp":        time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			"log_level":        "Critical",
			"response_time_ms": 120.5,
		},
		records.Record{
			"timestamp":        nil,
			"log_level":        "High",
			"response_time_ms": nil,
		},
	)
	return ds
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "timestamp,log_level,response_time_ms\n" +
		"2024-01-15T10:30:00Z,Critical,120.5\n" +
		",High,\n"
	if buf.String() != want {
		t.Errorf("csv = %q, want %q", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("rows = %d", len(out))
	}
	if out[0]["timestamp"] != "2024-01-15T10:30:00Z" {
		t.Errorf("timestamp = %v", out[0]["timestamp"])
	}
	if v, present := out[1]["response_time_ms"]; !present || v != nil {
		t.Errorf("missing value = %v (present=%v)", v, present)
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	ds := sample()

	csvPath := filepath.Join(dir, "out.csv")
	if err := WriteCSVFile(csvPath, ds); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	if b, err := os.ReadFile(csvPath); err != nil || len(b) == 0 {
		t.Fatalf("read csv: %v", err)
	}

	reportPath := filepath.Join(dir, "quality.json")
	if err := WriteReport(reportPath, quality.Snapshot(ds)); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	var rep quality.Report
	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.TotalRows != 2 {
		t.Errorf("total_rows = %d", rep.TotalRows)
	}
}
