package builtin

import (
	"reflect"
	"testing"
	"time"

	"cleanse/pkg/records"
)

var bugTypeRules = []KeywordRule{
	{Keywords: []string{"crash", "exception", "null pointer"}, Category: "Crash/Fatal"},
	{Keywords: []string{"ui", "css", "button", "overlapping", "alignment", "looks weird"}, Category: "UI/Visual"},
	{Keywords: []string{"slow", "timeout", "performance", "memory leak"}, Category: "Performance"},
	{Keywords: []string{"security", "xss", "vulnerability", "permission"}, Category: "Security"},
	{Keywords: []string{"api", "500", "404", "gateway"}, Category: "API/Integration"},
	{Keywords: []string{"data", "wrong", "calculation", "search results"}, Category: "Data Integrity"},
}

func TestKeywordClassifyOrderSensitive(t *testing.T) {
	in := ds("title",
		"App CRASH on login",
		"Performance timeout under load", // both "timeout" and "performance"; rule 3 wins
		"Crash after slow page",          // "crash" outranks "slow"
		"Broken button alignment",
		"Plain functional issue",
		nil,
	)
	stage := KeywordClassify{
		Source: "title", Target: "bug_type",
		Rules: bugTypeRules, Fallback: "Functional",
	}
	out, res := stage.Apply(in)

	want := []any{"Crash/Fatal", "Performance", "Crash/Fatal", "UI/Visual", "Functional", "Functional"}
	if got := colVals(out, "bug_type"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if res.RowsAffected != in.Len() {
		t.Fatalf("rows_affected = %d, want %d", res.RowsAffected, in.Len())
	}
	if !out.HasColumn("bug_type") {
		t.Fatal("target column not added to dataset")
	}
}

func TestClassifyNeverMissing(t *testing.T) {
	if got := Classify("", bugTypeRules, "Functional"); got != "Functional" {
		t.Fatalf("empty text: got %q, want fallback", got)
	}
}

func TestDurationDays(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }
	in := records.New([]string{"created_date", "resolved_date"})
	in.Append(
		records.Record{"created_date": day(1), "resolved_date": day(4)},
		records.Record{"created_date": day(10), "resolved_date": day(2)}, // negative span
		records.Record{"created_date": day(1), "resolved_date": nil},
	)
	out, res := DurationDays{From: "created_date", To: "resolved_date", Target: "resolution_days"}.Apply(in)

	want := []any{3.0, nil, nil}
	if got := colVals(out, "resolution_days"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if res.RowsAffected != 1 {
		t.Fatalf("rows_affected = %d, want 1", res.RowsAffected)
	}
}
