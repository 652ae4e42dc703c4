// Package config defines the canonical, serializable configuration model for
// a cleansing pipeline. It is intentionally small and explicit so that
// pipeline declarations can be loaded from disk (JSON or YAML) and passed
// through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the structure used in pipeline files
//     under configs/pipelines/*.
//  3. Declaration only: this package describes a pipeline; assembly into
//     runnable stages happens in cmd/cleanse.
//
// Example (trimmed):
//
//	{
//	  "project": "server_log_cleaning",
//	  "target":  ["timestamp", "log_level", "response_time_ms"],
//	  "sources": [
//	    { "name": "app_log", "reader": { "kind": "csv", "path": "logs.csv" },
//	      "mappings": [ { "target": "log_level", "kind": "rename", "from": "level" } ] }
//	  ],
//	  "stages": [
//	    { "kind": "categorical", "options": { "field": "log_level", "catalog": "severity" } }
//	  ],
//	  "outputs": { "dataset": [ { "kind": "csv", "path": "out.csv" } ], "lineage": "lineage.json" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Project names the cleaning run. It labels metrics, lineage documents,
	// and log lines.
	Project string `json:"project" yaml:"project"`

	// Target is the ordered unified column list every source is mapped onto.
	Target []string `json:"target" yaml:"target"`

	// Sources lists the inputs to combine, each with its reader and the
	// mapping rules that place its fields into the target schema.
	Sources []Source `json:"sources" yaml:"sources"`

	// Stages lists the ordered cleaning stages applied to the unified dataset.
	// Each stage has a kind and an options bag interpreted by the stage
	// implementation.
	Stages []Stage `json:"stages" yaml:"stages"`

	// Outputs describes where cleaned data and run artifacts are written.
	Outputs Outputs `json:"outputs" yaml:"outputs"`
}

// Source identifies one input dataset and how it maps onto the target schema.
type Source struct {
	// Name tags every record from this source in the unified dataset.
	Name string `json:"name" yaml:"name"`

	// Reader configures where and how the source's records are read.
	Reader Reader `json:"reader" yaml:"reader"`

	// Mappings lists the per-target-column derivation rules for this source.
	// Target columns without a mapping are filled with missing values.
	Mappings []Mapping `json:"mappings" yaml:"mappings"`
}

// Reader selects the input implementation for a source.
type Reader struct {
	// Kind selects the reader implementation: "csv", "json" or "sqlite".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the local filesystem path for file-backed readers.
	Path string `json:"path" yaml:"path"`

	// URL fetches the input over HTTP instead of the filesystem. Exactly one
	// of Path and URL should be set for "csv" and "json" readers.
	URL string `json:"url" yaml:"url"`

	// DSN is the database connection string for the "sqlite" reader.
	DSN string `json:"dsn" yaml:"dsn"`

	// Query is the SELECT statement for the "sqlite" reader.
	Query string `json:"query" yaml:"query"`

	// Options is a free-form map interpreted by the reader implementation.
	// For CSV, typical keys include: has_header (bool), comma (string),
	// trim_space (bool), header_map (object).
	Options Options `json:"options" yaml:"options"`
}

// Mapping defines how one target column is derived from a source record.
type Mapping struct {
	// Target is the unified column this rule fills.
	Target string `json:"target" yaml:"target"`

	// Kind selects the derivation: "rename", "missing", "prefix", "map",
	// "classify" or "labels".
	Kind string `json:"kind" yaml:"kind"`

	// From is the source field the rule reads. Unused by "missing".
	From string `json:"from" yaml:"from"`

	// Prefix is prepended by the "prefix" kind when absent.
	Prefix string `json:"prefix" yaml:"prefix"`

	// Catalog names a built-in value table for "map" and the equals table for
	// "labels" (e.g. "severity", "priority"). Ignored when Values is set.
	Catalog string `json:"catalog" yaml:"catalog"`

	// Values is an inline value table for "map" and the equals table for
	// "labels". Takes precedence over Catalog.
	Values map[string]string `json:"values" yaml:"values"`

	// RuleSet names a built-in ordered keyword table for "classify" and
	// "labels" (e.g. "bug_type", "component"). Ignored when Rules is set.
	RuleSet string `json:"rule_set" yaml:"rule_set"`

	// Rules is an inline ordered keyword table. Takes precedence over RuleSet.
	Rules []RuleSpec `json:"rules" yaml:"rules"`

	// Fallback is assigned by "classify" when no rule matches.
	Fallback string `json:"fallback" yaml:"fallback"`
}

// RuleSpec is one ordered keyword rule: the first rule whose keyword occurs
// in the scanned text wins.
type RuleSpec struct {
	Keywords []string `json:"keywords" yaml:"keywords"`
	Category string   `json:"category" yaml:"category"`
}

// Stage defines a single cleaning step. The sequence of steps forms the chain
// executed against the unified dataset.
type Stage struct {
	// Kind selects the stage implementation: "normalize", "categorical",
	// "timestamp", "range", "identifier", "address", "fill", "classify",
	// "duration", "require" or "dedup".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the selected stage.
	Options Options `json:"options" yaml:"options"`
}

// Outputs describes the artifacts a run writes.
type Outputs struct {
	// Dataset lists the sinks the cleaned dataset is written to.
	Dataset []Output `json:"dataset" yaml:"dataset"`

	// Lineage is the path the lineage document is written to. Empty disables
	// the file; the document is still printed when verbose.
	Lineage string `json:"lineage" yaml:"lineage"`

	// Quality is the path the quality report is written to. Empty disables it.
	Quality string `json:"quality" yaml:"quality"`
}

// Output selects one sink for the cleaned dataset.
type Output struct {
	// Kind selects the sink implementation: "csv", "json", "sqlite" or
	// "postgres".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the destination file for "csv" and "json".
	Path string `json:"path" yaml:"path"`

	// DSN is the connection string for database sinks.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the destination table for database sinks.
	Table string `json:"table" yaml:"table"`
}

// Load reads and decodes a pipeline file. YAML is selected by a .yaml/.yml
// extension; everything else is decoded as JSON.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(b)
	default:
		return Decode(b)
	}
}

// Decode decodes a JSON pipeline declaration.
func Decode(b []byte) (Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(b, &p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline config: %w", err)
	}
	return p, nil
}

// DecodeYAML decodes a YAML pipeline declaration.
func DecodeYAML(b []byte) (Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline config: %w", err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON/YAML
// maps without introducing third-party configuration libraries. It performs
// only minimal type coercion and returns provided defaults when a key is
// absent or of an unexpected type.
//
// Options is used for reader/stage-specific configuration where the shape
// varies by implementation.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Float returns the float64 value for key or def. Integer-typed values from
// YAML decoding are accepted and widened.
func (o Options) Float(key string, def float64) float64 {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character reader settings such
// as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings (or an array of interface values containing strings). Returns nil
// when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// FloatMap returns a map[string]float64 for key when the value is an object
// with numeric values. Non-numeric values are ignored.
func (o Options) FloatMap(key string) map[string]float64 {
	res := map[string]float64{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				switch n := vv.(type) {
				case float64:
					res[k] = n
				case int:
					res[k] = float64(n)
				}
			}
		}
	}
	return res
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// Has reports whether key is present, regardless of its type.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object decodes to a non-nil, empty Options map. This simplifies
// call sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML pipeline files.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	var tmp map[string]any
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}
