// Package export writes cleaned datasets and run artifacts to files. CSV is
// the primary interchange format; JSON preserves value types for downstream
// consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cleanse/pkg/records"
)

// WriteCSV writes the dataset in column order with a header row. Missing
// values become empty cells; timestamps are rendered as UTC RFC 3339.
func WriteCSV(w io.Writer, d *records.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(d.Columns))
	for _, rec := range d.Records {
		for i, col := range d.Columns {
			row[i] = cell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the dataset to path, creating or truncating it.
func WriteCSVFile(path string, d *records.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON writes the dataset as an indented JSON array of objects keyed by
// the dataset columns. Missing values become null; timestamps marshal as
// RFC 3339.
func WriteJSON(w io.Writer, d *records.Dataset) error {
	out := make([]map[string]any, 0, d.Len())
	for _, rec := range d.Records {
		obj := make(map[string]any, len(d.Columns))
		for _, col := range d.Columns {
			obj[col] = rec[col]
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteJSONFile writes the dataset as JSON to path.
func WriteJSONFile(path string, d *records.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteReport marshals any json-tagged report (quality, lineage) indented to
// path.
func WriteReport(path string, report any) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// cell renders one value for CSV output.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
