package scrub

import (
	"smartsales/internal/dataset"
)

// Inspection is the read-only summary of a dataset's shape and null content,
// taken before and after a pipeline run for verification.
type Inspection struct {
	Rows       int            `json:"rows"`
	Columns    int            `json:"columns"`
	NullCounts map[string]int `json:"null_counts"`
}

// Inspect computes the shape and per-column null counts of a dataset.
// It never mutates its input.
func Inspect(ds *dataset.Dataset) Inspection {
	inspection := Inspection{
		Rows:       ds.RowCount(),
		Columns:    ds.ColumnCount(),
		NullCounts: make(map[string]int, ds.ColumnCount()),
	}
	for _, name := range ds.Schema().Names() {
		inspection.NullCounts[name] = 0
	}
	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		for c, v := range row {
			if v.IsNull() {
				inspection.NullCounts[ds.Schema()[c].Name]++
			}
		}
	}
	return inspection
}
