package quality

import (
	"reflect"
	"testing"

	"cleanse/pkg/records"
)

func TestSnapshot(t *testing.T) {
	d := records.New([]string{"severity", "ip"})
	d.Append(
		records.Record{"severity": "High", "ip": nil},
		records.Record{"severity": nil, "ip": nil},
		records.Record{"severity": "Low", "ip": "1.2.3.4"},
	)
	rep := Snapshot(d)

	if rep.TotalRows != 3 || rep.TotalColumns != 2 {
		t.Fatalf("shape: %+v", rep)
	}
	wantMissing := map[string]int{"severity": 1, "ip": 2}
	if !reflect.DeepEqual(rep.MissingValues, wantMissing) {
		t.Fatalf("missing = %v, want %v", rep.MissingValues, wantMissing)
	}
	wantPct := map[string]float64{"severity": 33.33, "ip": 66.67}
	if !reflect.DeepEqual(rep.MissingPercentages, wantPct) {
		t.Fatalf("pct = %v, want %v", rep.MissingPercentages, wantPct)
	}
}

func TestSnapshotEmptyDataset(t *testing.T) {
	rep := Snapshot(records.New([]string{"a"}))
	if rep.MissingPercentages["a"] != 0 {
		t.Fatalf("empty dataset should report 0%%, got %v", rep.MissingPercentages["a"])
	}
}

func TestSnapshotIsPure(t *testing.T) {
	d := records.New([]string{"a"})
	d.Append(records.Record{"a": "x"})
	before := d.Records[0].Clone()
	Snapshot(d)
	if !reflect.DeepEqual(d.Records[0], before) {
		t.Fatal("snapshot mutated the dataset")
	}
}
