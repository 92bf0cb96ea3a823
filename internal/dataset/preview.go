package dataset

import "reportai-backend/report/model"

// DefaultPreviewRows is the number of rows returned with an upload.
const DefaultPreviewRows = 5

// Preview summarises a parsed upload for the API response.
type Preview struct {
	Rows        int                      `json:"rows"`
	Columns     int                      `json:"columns"`
	ColumnNames []string                 `json:"column_names"`
	FirstRows   []map[string]model.Value `json:"first_rows"`
	Sheets      []string                 `json:"sheets,omitempty"`
}

// NewPreview returns counts, column names and the first n rows keyed by
// column name.
func NewPreview(p Parsed, n int) Preview {
	ds := p.Dataset
	if n < 0 {
		n = 0
	}
	if n > ds.NumRows() {
		n = ds.NumRows()
	}
	first := make([]map[string]model.Value, 0, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]model.Value, ds.NumCols())
		for j, col := range ds.Columns {
			rec[col] = ds.Rows[i][j]
		}
		first = append(first, rec)
	}
	return Preview{
		Rows:        ds.NumRows(),
		Columns:     ds.NumCols(),
		ColumnNames: append([]string(nil), ds.Columns...),
		FirstRows:   first,
		Sheets:      p.Sheets,
	}
}
