package builtin

import (
	"reflect"
	"testing"

	"cleanse/pkg/records"
)

var severityValues = RecognizedValues{
	"Critical": "Critical", "CRITICAL": "Critical", "P1": "Critical",
	"High": "High", "high": "High", "P2": "High",
	"Medium": "Medium", "med": "Medium", "P3": "Medium",
	"Low": "Low", "LOW": "Low", "P4": "Low",
}

func ds(col string, vals ...any) *records.Dataset {
	d := records.New([]string{col})
	for _, v := range vals {
		d.Append(records.Record{col: v})
	}
	return d
}

func colVals(d *records.Dataset, col string) []any {
	out := make([]any, d.Len())
	for i, r := range d.Records {
		out[i] = r[col]
	}
	return out
}

func TestCategoricalMapping(t *testing.T) {
	in := ds("severity", "CRITICAL", "P2", "med", "bogus", nil)
	stage := NewCategorical("severity", severityValues, "inconsistent labels")
	out, res := stage.Apply(in)

	want := []any{"Critical", "High", "Medium", nil, nil}
	if got := colVals(out, "severity"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	// Attempted normalizations: the four non-nil inputs, including the
	// unmapped one.
	if res.RowsAffected != 4 {
		t.Fatalf("rows_affected = %d, want 4", res.RowsAffected)
	}
	// Input untouched.
	if in.Records[0]["severity"] != "CRITICAL" {
		t.Fatalf("input mutated: %v", in.Records[0])
	}
}

func TestCategoricalIdempotent(t *testing.T) {
	in := ds("severity", "Critical", "High", "Medium", "Low")
	stage := NewCategorical("severity", severityValues, "")
	once, _ := stage.Apply(in)
	twice, _ := stage.Apply(once)
	if !reflect.DeepEqual(colVals(once, "severity"), colVals(twice, "severity")) {
		t.Fatalf("canonical values are not fixed points: %v vs %v",
			colVals(once, "severity"), colVals(twice, "severity"))
	}
}

func TestCategoricalOwnsItsTable(t *testing.T) {
	table := RecognizedValues{"hi": "High"}
	stage := NewCategorical("severity", table, "")
	table["hi"] = "Low" // caller edits after construction
	out, _ := stage.Apply(ds("severity", "hi"))
	if out.Records[0]["severity"] != "High" {
		t.Fatalf("stage shared the caller's map: got %v", out.Records[0]["severity"])
	}
}

func TestFillDefault(t *testing.T) {
	in := ds("severity", nil, "High", nil)
	out, res := FillDefault{Field: "severity", Default: "Unknown"}.Apply(in)
	want := []any{"Unknown", "High", "Unknown"}
	if got := colVals(out, "severity"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if res.RowsAffected != 2 {
		t.Fatalf("rows_affected = %d, want 2", res.RowsAffected)
	}
}
