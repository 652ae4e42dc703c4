package builtin

import (
	"reflect"
	"testing"

	"cleanse/pkg/records"
)

func TestNormalize(t *testing.T) {
	in := records.New([]string{"a", "b"})
	in.Append(
		records.Record{"a": "  hi ", "b": "ok"},
		records.Record{"a": "   ", "b": 5.0},
	)
	out, res := Normalize{}.Apply(in)
	want := []records.Record{
		{"a": "hi", "b": "ok"},
		{"a": nil, "b": 5.0},
	}
	if !reflect.DeepEqual(out.Records, want) {
		t.Fatalf("got %#v want %#v", out.Records, want)
	}
	if res.RowsAffected != 2 {
		t.Fatalf("rows_affected = %d, want 2", res.RowsAffected)
	}
}

func TestRequire(t *testing.T) {
	in := records.New([]string{"id", "v"})
	in.Append(
		records.Record{"id": "1", "v": "x"},
		records.Record{"id": nil, "v": "y"},
		records.Record{"id": "", "v": "z"},
	)
	out, res := Require{Fields: []string{"id"}}.Apply(in)
	if out.Len() != 1 || out.Records[0]["v"] != "x" {
		t.Fatalf("got %#v", out.Records)
	}
	if res.RowsAffected != 2 {
		t.Fatalf("rows_affected = %d, want 2", res.RowsAffected)
	}
}
