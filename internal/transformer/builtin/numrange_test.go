package builtin

import (
	"reflect"
	"testing"
)

func TestNumericRangeHalfOpen(t *testing.T) {
	in := ds("response_time_ms", "0", "1", "250", "9999.5", "10000", "12000", "-1", "N/A", nil)
	stage := NumericRange{Field: "response_time_ms", Min: 1, Max: 10000}
	out, res := stage.Apply(in)

	// Inclusive at min, exclusive at max: 1 stays, 10000 goes.
	want := []any{nil, 1.0, 250.0, 9999.5, nil, nil, nil, nil, nil}
	if got := colVals(out, "response_time_ms"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	// Nulled among originally non-nil: 0, 10000, 12000, -1, N/A.
	if res.RowsAffected != 5 {
		t.Fatalf("rows_affected = %d, want 5", res.RowsAffected)
	}
}

func TestNumericRangeInvariant(t *testing.T) {
	in := ds("v", "0.5", "1", "500", "9999.99", "10000", "50000", "x")
	out, _ := NumericRange{Field: "v", Min: 1, Max: 10000}.Apply(in)
	for i, r := range out.Records {
		v, ok := r.Float("v")
		if !ok {
			continue
		}
		if v < 1 || v >= 10000 {
			t.Fatalf("row %d: %v escaped the [1, 10000) bound", i, v)
		}
	}
}

func TestNumericRangeUnits(t *testing.T) {
	units := map[string]float64{"hour": 60, "day": 480}
	in := ds("time_spent_minutes", "3 hours", "2 days", "45", "0", "-30", "None")
	stage := NumericRange{Field: "time_spent_minutes", Min: 1, Units: units}
	out, _ := stage.Apply(in)

	want := []any{180.0, 960.0, 45.0, nil, nil, nil}
	if got := colVals(out, "time_spent_minutes"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNumericRangeUnboundedAbove(t *testing.T) {
	in := ds("v", "123456789")
	out, _ := NumericRange{Field: "v", Min: 1}.Apply(in)
	if got := out.Records[0]["v"]; got != 123456789.0 {
		t.Fatalf("Max=0 should mean unbounded, got %v", got)
	}
}
