package builtin

import (
	"fmt"
	"strings"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// Require drops any record missing a value for one of the listed fields.
// Unlike the value-level stages this removes whole rows, so it belongs late
// in a pipeline, after the per-field cleaners have settled what is missing.
//
// RowsAffected counts dropped records.
type Require struct {
	Fields []string
	Reason string
}

func (q Require) Name() string { return "require:" + strings.Join(q.Fields, ",") }

func (q Require) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := records.New(in.Columns)
	dropped := 0
	for _, r := range in.Records {
		ok := true
		for _, f := range q.Fields {
			if r.Missing(f) {
				ok = false
				break
			}
			if s, isStr := r.String(f); isStr && s == "" {
				ok = false
				break
			}
		}
		if !ok {
			dropped++
			continue
		}
		out.Append(r.Clone())
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Dropped records missing %s", strings.Join(q.Fields, ", ")),
		RowsAffected: dropped,
		Reason:       q.Reason,
	}
}
