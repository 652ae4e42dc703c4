// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "sources[0].reader.kind",
// "stages[1].options.field"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownCatalogs names the built-in value tables a mapping or stage may
// reference by name.
var knownCatalogs = map[string]struct{}{
	"severity":            {},
	"log_environment":     {},
	"priority":            {},
	"status":              {},
	"component":           {},
	"sdlc_phase":          {},
	"tracker_environment": {},
	"browser":             {},
	"os":                  {},
}

// knownRuleSets names the built-in ordered keyword tables.
var knownRuleSets = map[string]struct{}{
	"bug_type":  {},
	"component": {},
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	p, err := config.Load("pipeline.json")
//	if err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Project) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "project",
			Message:  "project must not be empty; it labels metrics, lineage and logs",
		})
	}
	if len(p.Target) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "target",
			Message:  "target must list at least one unified column",
		})
	}
	issues = append(issues, validateSources(p.Sources, p.Target)...)
	issues = append(issues, validateStages(p.Stages)...)
	issues = append(issues, validateOutputs(p.Outputs)...)

	return issues
}

// validateSources validates every source declaration and cross-checks mapping
// targets against the unified column list.
func validateSources(sources []Source, target []string) []Issue {
	var issues []Issue

	if len(sources) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sources",
			Message:  "at least one source is required",
		})
		return issues
	}

	targets := make(map[string]struct{}, len(target))
	for _, t := range target {
		targets[t] = struct{}{}
	}

	seen := map[string]struct{}{}
	for i, s := range sources {
		path := fmt.Sprintf("sources[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "source name must not be empty",
			})
		} else if _, dup := seen[s.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate source name %q", s.Name),
			})
		}
		seen[s.Name] = struct{}{}

		issues = append(issues, validateReader(s.Reader, path+".reader")...)
		for j, m := range s.Mappings {
			mp := fmt.Sprintf("%s.mappings[%d]", path, j)
			issues = append(issues, validateMapping(m, mp)...)
			if _, ok := targets[m.Target]; m.Target != "" && !ok {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     mp + ".target",
					Message:  fmt.Sprintf("mapping target %q is not in the unified column list", m.Target),
				})
			}
		}
	}

	return issues
}

// validateReader validates one reader declaration.
func validateReader(r Reader, path string) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  "reader kind must not be empty",
		})
		return issues
	}

	known := map[string]struct{}{
		"csv":    {},
		"json":   {},
		"sqlite": {},
	}
	if _, ok := known[r.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown reader kind %q; ensure a matching implementation exists", r.Kind),
		})
	}

	switch r.Kind {
	case "csv", "json":
		hasPath := strings.TrimSpace(r.Path) != ""
		hasURL := strings.TrimSpace(r.URL) != ""
		if !hasPath && !hasURL {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".path",
				Message:  fmt.Sprintf("%s reader requires a path or url", r.Kind),
			})
		}
		if hasPath && hasURL {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "path and url are mutually exclusive",
			})
		}
	case "sqlite":
		if strings.TrimSpace(r.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".dsn",
				Message:  "sqlite reader requires a non-empty dsn",
			})
		}
		if strings.TrimSpace(r.Query) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".query",
				Message:  "sqlite reader requires a non-empty query",
			})
		}
	}

	return issues
}

// validateMapping validates one mapping rule.
func validateMapping(m Mapping, path string) []Issue {
	var issues []Issue

	if strings.TrimSpace(m.Target) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".target",
			Message:  "mapping target must not be empty",
		})
	}

	known := map[string]struct{}{
		"rename":   {},
		"missing":  {},
		"prefix":   {},
		"map":      {},
		"classify": {},
		"labels":   {},
	}
	if _, ok := known[m.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown mapping kind %q", m.Kind),
		})
		return issues
	}

	if m.Kind != "missing" && strings.TrimSpace(m.From) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".from",
			Message:  fmt.Sprintf("%s mapping requires a source field", m.Kind),
		})
	}

	switch m.Kind {
	case "prefix":
		if m.Prefix == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".prefix",
				Message:  "prefix mapping requires a prefix",
			})
		}
	case "map":
		if len(m.Values) == 0 && m.Catalog == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "map mapping requires values or a catalog",
			})
		}
	case "classify":
		if len(m.Rules) == 0 && m.RuleSet == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "classify mapping requires rules or a rule_set",
			})
		}
	case "labels":
		if len(m.Rules) == 0 && m.RuleSet == "" && len(m.Values) == 0 && m.Catalog == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "labels mapping requires keyword rules or an equals table",
			})
		}
	}

	if m.Catalog != "" {
		if _, ok := knownCatalogs[m.Catalog]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".catalog",
				Message:  fmt.Sprintf("unknown catalog %q", m.Catalog),
			})
		}
	}
	if m.RuleSet != "" {
		if _, ok := knownRuleSets[m.RuleSet]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".rule_set",
				Message:  fmt.Sprintf("unknown rule_set %q", m.RuleSet),
			})
		}
	}

	return issues
}

// validateStages validates the cleaning chain.
func validateStages(stages []Stage) []Issue {
	var issues []Issue

	if len(stages) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "stages",
			Message:  "no stages configured; unified records will be written as-is",
		})
		return issues
	}

	knownKinds := map[string]struct{}{
		"normalize":   {},
		"categorical": {},
		"timestamp":   {},
		"range":       {},
		"identifier":  {},
		"address":     {},
		"fill":        {},
		"classify":    {},
		"duration":    {},
		"require":     {},
		"dedup":       {},
	}

	// Stage kinds that operate on a single named field.
	needsField := map[string]struct{}{
		"categorical": {},
		"range":       {},
		"identifier":  {},
		"address":     {},
		"fill":        {},
	}

	for i, st := range stages {
		path := fmt.Sprintf("stages[%d]", i)
		if strings.TrimSpace(st.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  "stage kind must not be empty",
			})
			continue
		}
		if _, ok := knownKinds[st.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown stage kind %q; ensure a matching implementation exists", st.Kind),
			})
			continue
		}

		if _, ok := needsField[st.Kind]; ok {
			if st.Options.String("field", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.field",
					Message:  fmt.Sprintf("%s stage requires a field", st.Kind),
				})
			}
		}

		switch st.Kind {
		case "categorical":
			if len(st.Options.StringMap("values")) == 0 && st.Options.String("catalog", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options",
					Message:  "categorical stage requires values or a catalog",
				})
			} else if cat := st.Options.String("catalog", ""); cat != "" {
				if _, ok := knownCatalogs[cat]; !ok {
					issues = append(issues, Issue{
						Severity: SeverityWarning,
						Path:     path + ".options.catalog",
						Message:  fmt.Sprintf("unknown catalog %q", cat),
					})
				}
			}
		case "timestamp":
			if len(st.Options.StringSlice("fields")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.fields",
					Message:  "timestamp stage requires at least one field",
				})
			}
		case "range":
			min := st.Options.Float("min", 0)
			max := st.Options.Float("max", 0)
			if max != 0 && max <= min {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".options",
					Message:  fmt.Sprintf("range max %v is not above min %v; every value will be dropped", max, min),
				})
			}
		case "fill":
			if !st.Options.Has("default") {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.default",
					Message:  "fill stage requires a default",
				})
			}
		case "classify":
			if st.Options.String("source", "") == "" || st.Options.String("target", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options",
					Message:  "classify stage requires source and target fields",
				})
			}
			if st.Options.Any("rules") == nil && st.Options.String("rule_set", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options",
					Message:  "classify stage requires rules or a rule_set",
				})
			}
		case "duration":
			for _, k := range []string{"from", "to", "target"} {
				if st.Options.String(k, "") == "" {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     path + ".options." + k,
						Message:  fmt.Sprintf("duration stage requires %s", k),
					})
				}
			}
		case "require":
			if len(st.Options.StringSlice("fields")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".options.fields",
					Message:  "require stage requires at least one field",
				})
			}
		}
	}

	return issues
}

// validateOutputs validates sink declarations.
func validateOutputs(o Outputs) []Issue {
	var issues []Issue

	if len(o.Dataset) == 0 && o.Lineage == "" && o.Quality == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "outputs",
			Message:  "no outputs configured; the run will produce no artifacts",
		})
	}

	known := map[string]struct{}{
		"csv":      {},
		"json":     {},
		"sqlite":   {},
		"postgres": {},
	}
	for i, out := range o.Dataset {
		path := fmt.Sprintf("outputs.dataset[%d]", i)
		if _, ok := known[out.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown output kind %q; ensure a matching sink is registered", out.Kind),
			})
			continue
		}
		switch out.Kind {
		case "csv", "json":
			if strings.TrimSpace(out.Path) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".path",
					Message:  fmt.Sprintf("%s output requires a non-empty path", out.Kind),
				})
			}
		case "sqlite", "postgres":
			if strings.TrimSpace(out.DSN) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".dsn",
					Message:  fmt.Sprintf("%s output requires a non-empty dsn", out.Kind),
				})
			}
			if strings.TrimSpace(out.Table) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".table",
					Message:  fmt.Sprintf("%s output requires a non-empty table", out.Kind),
				})
			}
		}
	}

	return issues
}
