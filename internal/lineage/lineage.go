// Package lineage records the append-only audit trail of a cleaning run: one
// entry per executed stage, with row-count deltas and the rationale for the
// transformation. Entries are immutable once written and step numbers are
// strictly increasing from 1 within a run.
package lineage

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Entry documents one executed stage.
type Entry struct {
	Step         int       `json:"step"`
	Description  string    `json:"description"`
	RowsBefore   int       `json:"rows_before"`
	RowsAfter    int       `json:"rows_after"`
	RowsAffected int       `json:"rows_affected"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}

// Recorder accumulates entries. The zero value is not usable; call New.
// Record is safe for concurrent use so parallel per-field stages can share
// one recorder; the logical stage order is the caller's responsibility.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// New returns an empty recorder stamping entries with time.Now.
func New() *Recorder {
	return &Recorder{now: time.Now}
}

// NewAt returns a recorder using the given clock; tests use this for
// deterministic timestamps.
func NewAt(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Record appends one entry, assigning the next step number, and returns it.
// Prior entries are never mutated or removed.
func (r *Recorder) Record(description string, rowsBefore, rowsAfter, rowsAffected int, reason string) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := Entry{
		Step:         len(r.entries) + 1,
		Description:  description,
		RowsBefore:   rowsBefore,
		RowsAfter:    rowsAfter,
		RowsAffected: rowsAffected,
		Reason:       reason,
		Timestamp:    r.now(),
	}
	r.entries = append(r.entries, e)
	return e
}

// Entries returns a copy of the full ordered sequence, exportable at any
// point of a run.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// FinalStats summarizes a finished run for the export document.
type FinalStats struct {
	OriginalRows   int `json:"original_rows"`
	CleanedRows    int `json:"cleaned_rows"`
	RowsRemoved    int `json:"rows_removed"`
	RemainingNulls int `json:"remaining_nulls"`
}

// Document is the exported lineage artifact.
type Document struct {
	Project       string     `json:"project"`
	RunID         string     `json:"run_id,omitempty"`
	Date          string     `json:"date"`
	CleaningSteps []Entry    `json:"cleaning_steps"`
	FinalStats    FinalStats `json:"final_stats"`
}

// Export builds the document from the recorder's current entries.
func (r *Recorder) Export(project, runID string, stats FinalStats) Document {
	return Document{
		Project:       project,
		RunID:         runID,
		Date:          r.now().Format("2006-01-02"),
		CleaningSteps: r.Entries(),
		FinalStats:    stats,
	}
}

// WriteJSON serializes the document with indentation, matching the layout
// downstream consumers already parse.
func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
