// Package pipeline wires extraction, unification, the cleaning stage chain,
// and reporting into one run. Stages execute in declared order; each stage
// fully consumes the current dataset and produces the next before the
// following stage begins. The dataset is exclusively owned by the running
// pipeline, and a run either completes all stages or fails fatally at a
// stage boundary.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cleanse/internal/lineage"
	"cleanse/internal/metrics"
	"cleanse/internal/quality"
	"cleanse/internal/transformer"
	"cleanse/internal/unify"
	"cleanse/pkg/records"
)

// Extractor produces one source's raw dataset. Reader implementations live
// outside the core (CSV, JSON, SQLite); failures here are fatal
// collaborator I/O errors and propagate unchanged.
type Extractor interface {
	Extract(ctx context.Context) (*records.Dataset, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context) (*records.Dataset, error)

func (f ExtractorFunc) Extract(ctx context.Context) (*records.Dataset, error) { return f(ctx) }

// Pipeline is the staged-invocation surface: construct, Extract, Unify,
// ApplyStages (or Apply one at a time), Report, ExportLineage. Run executes
// the whole sequence. A Pipeline instance serves a single run.
type Pipeline struct {
	Project    string
	Unifier    unify.Unifier
	Extractors map[string]Extractor
	Stages     transformer.Chain

	// Verbose enables per-stage logging.
	Verbose bool

	runID    string
	recorder *lineage.Recorder

	inputs       map[string]*records.Dataset
	current      *records.Dataset
	originalRows int
}

// New constructs a pipeline for one run.
func New(project string, u unify.Unifier, extractors map[string]Extractor, stages transformer.Chain) *Pipeline {
	return &Pipeline{
		Project:    project,
		Unifier:    u,
		Extractors: extractors,
		Stages:     stages,
		runID:      uuid.NewString(),
		recorder:   lineage.New(),
	}
}

// RunID identifies this run in exported artifacts.
func (p *Pipeline) RunID() string { return p.runID }

// Lineage exposes the recorder; the full ordered sequence is exportable at
// any time.
func (p *Pipeline) Lineage() *lineage.Recorder { return p.recorder }

// Dataset returns the current dataset (nil before extraction/unification).
func (p *Pipeline) Dataset() *records.Dataset { return p.current }

// Extract reads every declared source. Source reads are independent and
// read-only, so they run concurrently; concatenation order is fixed later by
// the unifier's declared source order regardless of completion timing.
func (p *Pipeline) Extract(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	inputs := make(map[string]*records.Dataset, len(p.Extractors))

	for name, ex := range p.Extractors {
		name, ex := name, ex
		g.Go(func() error {
			ds, err := ex.Extract(ctx)
			if err != nil {
				return fmt.Errorf("extract %s: %w", name, err)
			}
			mu.Lock()
			inputs[name] = ds
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.inputs = inputs
	p.originalRows = 0
	for name, ds := range inputs {
		p.originalRows += ds.Len()
		metrics.RecordRows(p.Project, "extracted", int64(ds.Len()))
		if p.Verbose {
			log.Printf("extracted %d records from %s", ds.Len(), name)
		}
	}
	return nil
}

// Unify maps all extracted sources onto the target schema and records one
// lineage entry. A SchemaMismatch aborts before any further stage runs.
func (p *Pipeline) Unify() error {
	start := time.Now()
	unified, err := p.Unifier.Apply(p.inputs)
	metrics.RecordStage(p.Project, "unify", err, time.Since(start))
	if err != nil {
		return err
	}
	p.current = unified
	p.recorder.Record(
		fmt.Sprintf("Combined %d sources into the unified schema", len(p.Unifier.Sources)),
		p.originalRows, unified.Len(), unified.Len(),
		"A single schema enables cross-source cleaning and analysis",
	)
	metrics.RecordRows(p.Project, "unified", int64(unified.Len()))
	return nil
}

// Apply executes one stage against the current dataset and appends its
// lineage entry.
func (p *Pipeline) Apply(stage transformer.Stage) {
	in := p.current
	start := time.Now()
	out, res := stage.Apply(in)
	metrics.RecordStage(p.Project, stage.Name(), nil, time.Since(start))
	metrics.RecordRows(p.Project, "affected", int64(res.RowsAffected))
	if removed := in.Len() - out.Len(); removed > 0 {
		metrics.RecordRows(p.Project, "removed", int64(removed))
	}
	p.recorder.Record(res.Description, in.Len(), out.Len(), res.RowsAffected, res.Reason)
	if p.Verbose {
		log.Printf("stage %s: %d -> %d rows, %d affected",
			stage.Name(), in.Len(), out.Len(), res.RowsAffected)
	}
	p.current = out
}

// ApplyStages runs the configured chain in declared order.
func (p *Pipeline) ApplyStages() {
	for _, s := range p.Stages {
		p.Apply(s)
	}
}

// Report snapshots missing-value statistics for the current dataset. It has
// no side effects and appends nothing to the lineage, so it is callable at
// any pipeline point.
func (p *Pipeline) Report() quality.Report {
	return quality.Snapshot(p.current)
}

// Run executes extract, unify, and the full stage chain.
func (p *Pipeline) Run(ctx context.Context) (*records.Dataset, error) {
	if err := p.Extract(ctx); err != nil {
		return nil, err
	}
	if err := p.Unify(); err != nil {
		return nil, err
	}
	p.ApplyStages()
	return p.current, nil
}

// ExportLineage builds the audit document for the run so far.
func (p *Pipeline) ExportLineage() lineage.Document {
	cleaned := 0
	nulls := 0
	if p.current != nil {
		cleaned = p.current.Len()
		nulls = p.current.TotalMissing()
	}
	return p.recorder.Export(p.Project, p.runID, lineage.FinalStats{
		OriginalRows:   p.originalRows,
		CleanedRows:    cleaned,
		RowsRemoved:    p.originalRows - cleaned,
		RemainingNulls: nulls,
	})
}
