package main

import (
	"path/filepath"
	"testing"

	"cleanse/internal/config"
	"cleanse/pkg/records"
)

func loadPreset(t *testing.T, name string) config.Pipeline {
	t.Helper()
	p, err := config.Load(filepath.Join("..", "..", "configs", "pipelines", name))
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return p
}

func findStage(t *testing.T, p config.Pipeline, kind, field string) config.Stage {
	t.Helper()
	for _, s := range p.Stages {
		if s.Kind == kind && s.Options.String("field", "") == field {
			return s
		}
	}
	t.Fatalf("no %s stage for field %s", kind, field)
	return config.Stage{}
}

func hasStage(p config.Pipeline, kind, field string) bool {
	for _, s := range p.Stages {
		if s.Kind == kind && s.Options.String("field", "") == field {
			return true
		}
	}
	return false
}

func TestShippedPresetsBuild(t *testing.T) {
	for _, name := range []string{"server_logs.json", "bug_reports.yaml"} {
		p := loadPreset(t, name)
		for _, iss := range config.ValidatePipeline(p) {
			if iss.Severity == config.SeverityError {
				t.Errorf("%s: %v", name, iss)
			}
		}
		if _, err := buildPipeline(p); err != nil {
			t.Errorf("%s: assemble: %v", name, err)
		}
	}
}

// Response times of zero or below one millisecond are impossible for real
// requests and must not survive the shipped range stage.
func TestServerLogsPresetRangeExcludesZero(t *testing.T) {
	p := loadPreset(t, "server_logs.json")
	st, err := buildStage(findStage(t, p, "range", "response_time_ms"))
	if err != nil {
		t.Fatalf("buildStage: %v", err)
	}

	ds := records.New([]string{"response_time_ms"})
	ds.Append(
		records.Record{"response_time_ms": "0"},
		records.Record{"response_time_ms": "0.5"},
		records.Record{"response_time_ms": "9999.9"},
	)
	out, _ := st.Apply(ds)

	if got := out.Records[0]["response_time_ms"]; got != nil {
		t.Errorf("zero retained: %v", got)
	}
	if got := out.Records[1]["response_time_ms"]; got != nil {
		t.Errorf("sub-millisecond value retained: %v", got)
	}
	if got := out.Records[2]["response_time_ms"]; got != 9999.9 {
		t.Errorf("in-range value = %v, want 9999.9", got)
	}
}

// The bug-report preset carries the full 16-column tracker schema and runs a
// categorical standardization stage, plus an Unknown fill, per catalog field.
func TestBugReportsPresetSchemaAndStages(t *testing.T) {
	p := loadPreset(t, "bug_reports.yaml")

	for _, col := range []string{"description", "reporter", "assignee", "sdlc_phase", "browser", "os"} {
		found := false
		for _, c := range p.Target {
			if c == col {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("target schema lacks %s", col)
		}
	}

	for _, field := range []string{"priority", "status", "component", "environment", "sdlc_phase", "browser", "os"} {
		if !hasStage(p, "categorical", field) {
			t.Errorf("no categorical stage for %s", field)
		}
	}
	for _, field := range []string{"priority", "status", "component", "environment", "sdlc_phase", "reporter", "assignee"} {
		fill := findStage(t, p, "fill", field)
		if got := fill.Options.String("default", ""); got != "Unknown" {
			t.Errorf("fill default for %s = %q, want Unknown", field, got)
		}
	}

	// Browser and os stay missing when unmapped; no fill stage exists for them.
	for _, field := range []string{"browser", "os"} {
		if hasStage(p, "fill", field) {
			t.Errorf("unexpected fill stage for %s", field)
		}
	}
}

// Effort entries convert through the unit table and zero or negative values
// are nulled, matching the tracker's logging-error rule.
func TestBugReportsPresetTimeSpent(t *testing.T) {
	p := loadPreset(t, "bug_reports.yaml")
	st, err := buildStage(findStage(t, p, "range", "time_spent_minutes"))
	if err != nil {
		t.Fatalf("buildStage: %v", err)
	}

	ds := records.New([]string{"time_spent_minutes"})
	ds.Append(
		records.Record{"time_spent_minutes": "0"},
		records.Record{"time_spent_minutes": "-5"},
		records.Record{"time_spent_minutes": "2 hours"},
		records.Record{"time_spent_minutes": "30"},
	)
	out, _ := st.Apply(ds)

	if got := out.Records[0]["time_spent_minutes"]; got != nil {
		t.Errorf("zero retained: %v", got)
	}
	if got := out.Records[1]["time_spent_minutes"]; got != nil {
		t.Errorf("negative retained: %v", got)
	}
	if got := out.Records[2]["time_spent_minutes"]; got != 120.0 {
		t.Errorf("unit value = %v, want 120", got)
	}
	if got := out.Records[3]["time_spent_minutes"]; got != 30.0 {
		t.Errorf("plain value = %v, want 30", got)
	}
}
