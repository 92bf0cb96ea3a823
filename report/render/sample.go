package render

import "reportai-backend/report/model"

const (
	MaxSampleRows = 10
	MaxSampleCols = 6
)

// TableSample is a read-only view of the leading rows and columns of a dataset.
type TableSample struct {
	Columns []string
	Rows    [][]model.Value
}

// Sample takes the first maxRows rows and first maxCols columns in their
// original order. A non-positive limit yields no rows or no columns.
func Sample(ds model.Dataset, maxRows, maxCols int) TableSample {
	cols := clamp(len(ds.Columns), maxCols)
	rows := clamp(len(ds.Rows), maxRows)

	out := TableSample{
		Columns: append([]string(nil), ds.Columns[:cols]...),
		Rows:    make([][]model.Value, 0, rows),
	}
	for _, r := range ds.Rows[:rows] {
		cells := make([]model.Value, cols)
		copy(cells, r)
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// SamplePreview applies the document preview limits.
func SamplePreview(ds model.Dataset) TableSample {
	return Sample(ds, MaxSampleRows, MaxSampleCols)
}

// Full returns every row and column.
func Full(ds model.Dataset) TableSample {
	return Sample(ds, len(ds.Rows), len(ds.Columns))
}

func clamp(n, limit int) int {
	if limit <= 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}
