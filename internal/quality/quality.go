// Package quality computes missing-value statistics over a dataset snapshot.
// Report is a pure function: callable at any pipeline point, no side effects,
// and it never appends to the lineage.
package quality

import (
	"math"

	"cleanse/pkg/records"
)

// Report summarizes how much of each column is missing.
type Report struct {
	TotalRows          int                `json:"total_rows"`
	TotalColumns       int                `json:"total_columns"`
	MissingValues      map[string]int     `json:"missing_values"`
	MissingPercentages map[string]float64 `json:"missing_percentages"`
}

// Snapshot builds a Report for the dataset as it stands.
func Snapshot(d *records.Dataset) Report {
	rep := Report{
		TotalRows:          d.Len(),
		TotalColumns:       len(d.Columns),
		MissingValues:      make(map[string]int, len(d.Columns)),
		MissingPercentages: make(map[string]float64, len(d.Columns)),
	}
	for _, col := range d.Columns {
		n := d.MissingCount(col)
		rep.MissingValues[col] = n
		if d.Len() == 0 {
			rep.MissingPercentages[col] = 0
			continue
		}
		rep.MissingPercentages[col] = round2(float64(n) / float64(d.Len()) * 100)
	}
	return rep
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
