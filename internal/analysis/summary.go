package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"reportai-backend/report/model"
)

// ColumnStats describes one numeric column.
type ColumnStats struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Nulls  int     `json:"nulls"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Summary is the dataset digest handed to the analysis provider.
type Summary struct {
	Rows        int           `json:"total_rows"`
	Columns     int           `json:"total_columns"`
	ColumnNames []string      `json:"column_names"`
	Numeric     []ColumnStats `json:"numeric_columns"`
	TextColumns []string      `json:"text_columns,omitempty"`
}

// Summarize computes row/column counts and per-column statistics. A column
// counts as numeric when it has at least one number and no other non-null
// kinds.
func Summarize(ds model.Dataset) Summary {
	s := Summary{
		Rows:        ds.NumRows(),
		Columns:     ds.NumCols(),
		ColumnNames: append([]string(nil), ds.Columns...),
	}
	for j, name := range ds.Columns {
		values := make([]float64, 0, len(ds.Rows))
		nulls, other := 0, 0
		for _, row := range ds.Rows {
			if j >= len(row) {
				nulls++
				continue
			}
			v := row[j]
			switch {
			case v.IsNull():
				nulls++
			case v.Kind() == model.KindNumber:
				if f, ok := v.Float(); ok {
					values = append(values, f)
				} else {
					other++
				}
			default:
				other++
			}
		}
		if len(values) == 0 || other > 0 {
			s.TextColumns = append(s.TextColumns, name)
			continue
		}
		s.Numeric = append(s.Numeric, describe(name, values, nulls))
	}
	return s
}

func describe(name string, values []float64, nulls int) ColumnStats {
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 || math.IsNaN(std) {
		std = 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return ColumnStats{
		Name:   name,
		Count:  len(values),
		Nulls:  nulls,
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}
