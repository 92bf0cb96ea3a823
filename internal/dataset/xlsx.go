package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"reportai-backend/report/model"
)

// ParseXLSX reads the first sheet of a workbook. Cell types recorded in the
// workbook are kept: numbers stay numeric, booleans stay booleans and
// date-formatted numbers become dates.
func ParseXLSX(r io.Reader) (Parsed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Parsed{}, &model.ValidationError{Field: "file", Message: fmt.Sprintf("invalid workbook: %v", err)}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Parsed{}, &model.ValidationError{Field: "file", Message: ErrEmptyFile.Error()}
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Parsed{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	formatted, err := f.GetRows(sheet)
	if err != nil {
		return Parsed{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return Parsed{}, &model.ValidationError{Field: "file", Message: ErrEmptyFile.Error()}
	}

	ds := model.Dataset{Columns: normalizeHeader(raw[0])}
	for i := 1; i < len(raw); i++ {
		cells := make([]model.Value, len(raw[i]))
		for j, value := range raw[i] {
			display := value
			if i < len(formatted) && j < len(formatted[i]) {
				display = formatted[i][j]
			}
			cells[j] = typedCell(f, sheet, i, j, value, display)
		}
		if allNull(cells) {
			continue
		}
		ds.Rows = append(ds.Rows, fitRow(cells, len(ds.Columns)))
	}
	return Parsed{Dataset: ds, Sheets: sheets}, nil
}

func typedCell(f *excelize.File, sheet string, row, col int, raw, display string) model.Value {
	if strings.TrimSpace(raw) == "" {
		return model.Null()
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return InferValue(raw)
	}
	cellType, err := f.GetCellType(sheet, ref)
	if err != nil {
		return InferValue(raw)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return model.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, ok := parseTime(display); ok {
			return model.Time(t)
		}
		return model.String(display)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return InferValue(raw)
		}
		if display != raw {
			if serial, err := excelize.ExcelDateToTime(num, false); err == nil && looksLikeDate(display) {
				return model.Time(serial)
			}
		}
		return model.Number(num)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return model.String(strings.TrimSpace(raw))
	default:
		return InferValue(display)
	}
}

// looksLikeDate reports whether a formatted number reads as a calendar date
// such as 05-01-24 or 2024/05/01.
func looksLikeDate(display string) bool {
	return strings.Count(display, "-")+strings.Count(display, "/") >= 2
}
