// Package transformer defines the stage contract shared by every cleaning
// transform. A Stage consumes an input dataset and returns a new dataset plus
// a Result describing what it did; it never mutates its input, so every
// intermediate dataset stays inspectable and stages test as pure functions.
package transformer

import "cleanse/pkg/records"

// Result is the per-stage bookkeeping handed to the lineage recorder.
// RowsAffected follows each stage's own counting contract (see the builtin
// package); Reason states why the transformation was necessary.
type Result struct {
	Description  string
	RowsAffected int
	Reason       string
}

// Stage is a single cleaning transform.
type Stage interface {
	Name() string
	Apply(in *records.Dataset) (*records.Dataset, Result)
}

// Chain is an ordered list of stages. Apply runs them in declared order and
// returns the final dataset together with one Result per stage.
type Chain []Stage

func (c Chain) Apply(in *records.Dataset) (*records.Dataset, []Result) {
	out := in
	results := make([]Result, 0, len(c))
	var res Result
	for _, s := range c {
		out, res = s.Apply(out)
		results = append(results, res)
	}
	return out, results
}
