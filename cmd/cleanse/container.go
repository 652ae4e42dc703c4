// Package main wires a pipeline declaration end-to-end. This file keeps the
// CLI layer thin: it resolves readers, mapping rules, catalogs, stages, and
// sinks from config, and never leaks backend specifics into main.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"cleanse/internal/catalog"
	"cleanse/internal/config"
	"cleanse/internal/datasource"
	"cleanse/internal/datasource/file"
	"cleanse/internal/datasource/httpsrc"
	"cleanse/internal/export"
	"cleanse/internal/metrics"
	"cleanse/internal/pipeline"
	"cleanse/internal/storage"
	sqlitestore "cleanse/internal/storage/sqlite"
	"cleanse/internal/transformer"
	"cleanse/internal/transformer/builtin"
	"cleanse/internal/unify"
	"cleanse/pkg/records"

	csvparser "cleanse/internal/parser/csv"
	jsonparser "cleanse/internal/parser/json"
)

// Function variables used to introduce test seams. In production these point
// to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}

	readSQLiteFn = sqlitestore.ReadQuery

	openSourceFn = func(r config.Reader) datasource.Source {
		if r.URL != "" {
			return httpsrc.NewRemote(r.URL, httpsrc.Config{})
		}
		return file.NewLocal(r.Path)
	}
)

// buildPipeline assembles a runnable pipeline from its declaration.
func buildPipeline(cfg config.Pipeline) (*pipeline.Pipeline, error) {
	u, err := buildUnifier(cfg)
	if err != nil {
		return nil, err
	}
	extractors, err := buildExtractors(cfg)
	if err != nil {
		return nil, err
	}
	stages, err := buildStages(cfg.Stages)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg.Project, u, extractors, stages), nil
}

// buildUnifier resolves every source's mapping rules onto the target schema.
func buildUnifier(cfg config.Pipeline) (unify.Unifier, error) {
	u := unify.Unifier{Target: cfg.Target}
	for _, s := range cfg.Sources {
		rules := make([]unify.Rule, 0, len(s.Mappings))
		for _, m := range s.Mappings {
			rule, err := mappingRule(m)
			if err != nil {
				return unify.Unifier{}, fmt.Errorf("source %s: %w", s.Name, err)
			}
			rules = append(rules, rule)
		}
		u.Sources = append(u.Sources, unify.Source{Name: s.Name, Rules: rules})
	}
	return u, nil
}

// mappingRule translates one config mapping into a unification rule.
func mappingRule(m config.Mapping) (unify.Rule, error) {
	rule := unify.Rule{Target: m.Target, From: m.From, Prefix: m.Prefix}

	switch m.Kind {
	case "rename":
		rule.Kind = unify.KindRename
	case "missing":
		rule.Kind = unify.KindMissing
	case "prefix":
		rule.Kind = unify.KindPrefix
	case "map":
		rule.Kind = unify.KindMap
		values, err := mappingValues(m)
		if err != nil {
			return unify.Rule{}, err
		}
		rule.Values = values
	case "classify":
		rule.Kind = unify.KindClassify
		rules, err := mappingRules(m)
		if err != nil {
			return unify.Rule{}, err
		}
		rule.Rules = rules
	case "labels":
		rule.Kind = unify.KindLabels
		if len(m.Rules) > 0 || m.RuleSet != "" {
			rules, err := mappingRules(m)
			if err != nil {
				return unify.Rule{}, err
			}
			rule.Rules = rules
		}
		if len(m.Values) > 0 || m.Catalog != "" {
			values, err := mappingValues(m)
			if err != nil {
				return unify.Rule{}, err
			}
			rule.Equals = lowerKeys(values)
		}
	default:
		return unify.Rule{}, fmt.Errorf("mapping %s: unknown kind %q", m.Target, m.Kind)
	}
	return rule, nil
}

// mappingValues resolves a value table from inline values or a named catalog.
func mappingValues(m config.Mapping) (builtin.RecognizedValues, error) {
	if len(m.Values) > 0 {
		return builtin.RecognizedValues(m.Values), nil
	}
	return valueTable(m.Catalog)
}

// mappingRules resolves a keyword table from inline rules or a named set.
func mappingRules(m config.Mapping) ([]builtin.KeywordRule, error) {
	if len(m.Rules) > 0 {
		return inlineRules(m.Rules), nil
	}
	return ruleTable(m.RuleSet)
}

// valueTable returns the named built-in value table.
func valueTable(name string) (builtin.RecognizedValues, error) {
	switch name {
	case "severity":
		return catalog.Severity(), nil
	case "log_environment":
		return catalog.LogEnvironment(), nil
	case "priority":
		return catalog.Priority(), nil
	case "status":
		return catalog.Status(), nil
	case "component":
		return catalog.Component(), nil
	case "sdlc_phase":
		return catalog.SDLCPhase(), nil
	case "tracker_environment":
		return catalog.TrackerEnvironment(), nil
	case "browser":
		return catalog.Browser(), nil
	case "os":
		return catalog.OS(), nil
	default:
		return nil, fmt.Errorf("unknown catalog %q", name)
	}
}

// ruleTable returns the named built-in keyword table.
func ruleTable(name string) ([]builtin.KeywordRule, error) {
	switch name {
	case "bug_type":
		return catalog.BugTypeRules(), nil
	case "component":
		return catalog.ComponentRules(), nil
	default:
		return nil, fmt.Errorf("unknown rule_set %q", name)
	}
}

// inlineRules converts declared rules, lowercasing keywords since matching
// happens against lowercased text.
func inlineRules(specs []config.RuleSpec) []builtin.KeywordRule {
	out := make([]builtin.KeywordRule, 0, len(specs))
	for _, r := range specs {
		kws := make([]string, len(r.Keywords))
		for i, kw := range r.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		out = append(out, builtin.KeywordRule{Keywords: kws, Category: r.Category})
	}
	return out
}

// lowerKeys lowercases map keys for case-insensitive equality tables.
func lowerKeys(m builtin.RecognizedValues) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// buildExtractors binds each source's reader to an extractor.
func buildExtractors(cfg config.Pipeline) (map[string]pipeline.Extractor, error) {
	out := make(map[string]pipeline.Extractor, len(cfg.Sources))
	for _, s := range cfg.Sources {
		ex, err := buildExtractor(s)
		if err != nil {
			return nil, err
		}
		out[s.Name] = ex
	}
	return out, nil
}

func buildExtractor(s config.Source) (pipeline.Extractor, error) {
	r := s.Reader
	switch r.Kind {
	case "csv":
		p := csvparser.NewParser(csvOptions(r.Options))
		return parseExtractor(s.Name, openSourceFn(r), p.Parse), nil
	case "json":
		p := jsonparser.NewParser(jsonparser.Options{AllowArrays: r.Options.Bool("allow_arrays", false)})
		return parseExtractor(s.Name, openSourceFn(r), p.Parse), nil
	case "sqlite":
		dsn, query := r.DSN, r.Query
		return pipeline.ExtractorFunc(func(ctx context.Context) (*records.Dataset, error) {
			return readSQLiteFn(ctx, dsn, query)
		}), nil
	default:
		return nil, fmt.Errorf("source %s: unknown reader kind %q", s.Name, r.Kind)
	}
}

// parseExtractor composes a byte source and a parser into an extractor.
// Skipped rows are logged, not fatal.
func parseExtractor(name string, src datasource.Source, parse func(io.Reader) (*records.Dataset, int, error)) pipeline.Extractor {
	return pipeline.ExtractorFunc(func(ctx context.Context) (*records.Dataset, error) {
		rc, err := src.Open(ctx)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		ds, skipped, err := parse(rc)
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			log.Printf("source %s: skipped %d malformed rows", name, skipped)
		}
		return ds, nil
	})
}

// csvOptions maps the reader options bag onto CSV parser options.
func csvOptions(o config.Options) csvparser.Options {
	return csvparser.Options{
		HasHeader:      o.Bool("has_header", true),
		Comma:          o.Rune("comma", ','),
		TrimSpace:      o.Bool("trim_space", false),
		ExpectedFields: o.Int("expected_fields", 0),
		HeaderMap:      o.StringMap("header_map"),
		ScrubUnicode:   o.Bool("scrub_unicode", false),
	}
}

// buildStages translates stage declarations into the cleaning chain.
func buildStages(stages []config.Stage) (transformer.Chain, error) {
	chain := make(transformer.Chain, 0, len(stages))
	for i, s := range stages {
		st, err := buildStage(s)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, s.Kind, err)
		}
		chain = append(chain, st)
	}
	return chain, nil
}

func buildStage(s config.Stage) (transformer.Stage, error) {
	o := s.Options
	reason := o.String("reason", "")

	switch s.Kind {
	case "normalize":
		return builtin.Normalize{Reason: reason}, nil

	case "categorical":
		values, err := stageValues(o)
		if err != nil {
			return nil, err
		}
		return builtin.NewCategorical(o.String("field", ""), values, reason), nil

	case "timestamp":
		return builtin.Timestamp{
			Fields:    o.StringSlice("fields"),
			Sentinels: o.StringSlice("sentinels"),
			Reason:    reason,
		}, nil

	case "range":
		units, err := stageUnits(o)
		if err != nil {
			return nil, err
		}
		return builtin.NumericRange{
			Field:  o.String("field", ""),
			Min:    o.Float("min", 0),
			Max:    o.Float("max", 0),
			Units:  units,
			Reason: reason,
		}, nil

	case "identifier":
		return builtin.Identifier{
			Field:     o.String("field", ""),
			Prefix:    o.String("prefix", ""),
			Sentinels: o.StringSlice("sentinels"),
			Reason:    reason,
		}, nil

	case "address":
		var pattern *regexp.Regexp
		if p := o.String("pattern", ""); p != "" {
			var err error
			if pattern, err = regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("compile pattern: %w", err)
			}
		}
		return builtin.Address{
			Field:     o.String("field", ""),
			Pattern:   pattern,
			Sentinels: o.StringSlice("sentinels"),
			Reason:    reason,
		}, nil

	case "fill":
		return builtin.FillDefault{
			Field:   o.String("field", ""),
			Default: o.Any("default"),
			Reason:  reason,
		}, nil

	case "classify":
		rules, err := stageRules(o)
		if err != nil {
			return nil, err
		}
		return builtin.KeywordClassify{
			Source:   o.String("source", ""),
			Target:   o.String("target", ""),
			Rules:    rules,
			Fallback: o.String("fallback", ""),
			Reason:   reason,
		}, nil

	case "duration":
		return builtin.DurationDays{
			From:   o.String("from", ""),
			To:     o.String("to", ""),
			Target: o.String("target", ""),
			Reason: reason,
		}, nil

	case "require":
		return builtin.Require{Fields: o.StringSlice("fields"), Reason: reason}, nil

	case "dedup":
		return builtin.DeDup{Keys: o.StringSlice("keys"), Reason: reason}, nil

	default:
		return nil, fmt.Errorf("unknown stage kind %q", s.Kind)
	}
}

// stageValues resolves a categorical value table from inline values or a
// named catalog.
func stageValues(o config.Options) (builtin.RecognizedValues, error) {
	if m := o.StringMap("values"); len(m) > 0 {
		return builtin.RecognizedValues(m), nil
	}
	return valueTable(o.String("catalog", ""))
}

// stageUnits resolves range unit multipliers from inline options or a named
// table. Absent both, no unit parsing happens.
func stageUnits(o config.Options) (map[string]float64, error) {
	if m := o.FloatMap("units"); len(m) > 0 {
		return m, nil
	}
	switch name := o.String("units_catalog", ""); name {
	case "":
		return nil, nil
	case "time_spent":
		return catalog.TimeSpentUnits(), nil
	default:
		return nil, fmt.Errorf("unknown units_catalog %q", name)
	}
}

// stageRules resolves classify rules from inline specs or a named set.
func stageRules(o config.Options) ([]builtin.KeywordRule, error) {
	if raw := o.Any("rules"); raw != nil {
		specs, err := decodeRuleSpecs(raw)
		if err != nil {
			return nil, err
		}
		return inlineRules(specs), nil
	}
	return ruleTable(o.String("rule_set", ""))
}

// decodeRuleSpecs converts the raw options value for "rules" into specs.
func decodeRuleSpecs(raw any) ([]config.RuleSpec, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("rules must be a list")
	}
	specs := make([]config.RuleSpec, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("rules[%d] must be an object", i)
		}
		spec := config.RuleSpec{Category: stringAt(m, "category")}
		if kws, ok := m["keywords"].([]any); ok {
			for _, kw := range kws {
				if s, ok := kw.(string); ok {
					spec.Keywords = append(spec.Keywords, s)
				}
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// writeOutputs persists the cleaned dataset and the run artifacts.
func writeOutputs(ctx context.Context, cfg config.Pipeline, p *pipeline.Pipeline, ds *records.Dataset) error {
	for _, out := range cfg.Outputs.Dataset {
		if err := writeDataset(ctx, cfg.Project, out, ds); err != nil {
			return err
		}
	}
	if path := cfg.Outputs.Lineage; path != "" {
		if err := export.WriteReport(path, p.ExportLineage()); err != nil {
			return fmt.Errorf("write lineage: %w", err)
		}
	}
	if path := cfg.Outputs.Quality; path != "" {
		if err := export.WriteReport(path, p.Report()); err != nil {
			return fmt.Errorf("write quality report: %w", err)
		}
	}
	return nil
}

func writeDataset(ctx context.Context, job string, out config.Output, ds *records.Dataset) error {
	switch out.Kind {
	case "csv":
		if err := export.WriteCSVFile(out.Path, ds); err != nil {
			return err
		}
	case "json":
		if err := export.WriteJSONFile(out.Path, ds); err != nil {
			return err
		}
	case "sqlite", "postgres":
		repo, err := newRepositoryFn(ctx, storage.Config{Kind: out.Kind, DSN: out.DSN, Table: out.Table})
		if err != nil {
			return fmt.Errorf("open %s sink: %w", out.Kind, err)
		}
		defer repo.Close()
		if _, err := repo.Write(ctx, ds); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output kind %q", out.Kind)
	}
	metrics.RecordRows(job, "exported", int64(ds.Len()))
	return nil
}
