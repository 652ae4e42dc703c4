package builtin

import (
	"reflect"
	"testing"
)

func TestAddressStructuralCheck(t *testing.T) {
	in := ds("ip_address",
		"192.168.1.1", "0.0.0.0", "INVALID_IP", "", nil,
		"999.999.999.999", "10.0.0", "1.2.3.4.5", "a.b.c.d")
	out, res := Address{Field: "ip_address"}.Apply(in)

	// 999.999.999.999 passes the digit-count-only shape check and is
	// retained; that is the documented baseline behavior.
	want := []any{"192.168.1.1", nil, nil, nil, nil, "999.999.999.999", nil, nil, nil}
	if got := colVals(out, "ip_address"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	// Newly missing: 0.0.0.0, INVALID_IP, "", 10.0.0, 1.2.3.4.5, a.b.c.d.
	if res.RowsAffected != 6 {
		t.Fatalf("rows_affected = %d, want 6", res.RowsAffected)
	}
}
