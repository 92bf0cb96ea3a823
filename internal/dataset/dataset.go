// Package dataset parses uploaded tabular files into model.Dataset.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"reportai-backend/report/model"
)

// Kind identifies an accepted upload encoding.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindXLSX Kind = "xlsx"
)

// CSVSheetName is reported as the single sheet of a CSV upload.
const CSVSheetName = "Sheet1"

// ErrEmptyFile is returned when a file has no header row.
var ErrEmptyFile = errors.New("file contains no header row")

// Parsed is a decoded upload.
type Parsed struct {
	Dataset model.Dataset
	// Sheets lists workbook sheet names; CSV uploads report CSVSheetName.
	Sheets []string
}

// DetectKind maps a file name to an upload kind by extension.
func DetectKind(fileName string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return KindCSV, nil
	case ".xlsx":
		return KindXLSX, nil
	case ".xls":
		return "", &model.ValidationError{Field: "file", Message: "legacy .xls workbooks are not supported, save as .xlsx"}
	default:
		return "", &model.ValidationError{Field: "file", Message: "only CSV and Excel (.xlsx) files are supported"}
	}
}

// Parse decodes r according to the extension of fileName.
func Parse(fileName string, r io.Reader) (Parsed, error) {
	kind, err := DetectKind(fileName)
	if err != nil {
		return Parsed{}, err
	}
	switch kind {
	case KindXLSX:
		return ParseXLSX(r)
	default:
		ds, err := ParseCSV(r)
		if err != nil {
			return Parsed{}, err
		}
		return Parsed{Dataset: ds, Sheets: []string{CSVSheetName}}, nil
	}
}

// normalizeHeader trims names, fills empty ones with column_N and suffixes
// duplicates with _2, _3 and so on.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		candidate := name
		for n := 2; ; n++ {
			if _, taken := seen[candidate]; !taken {
				break
			}
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		seen[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}

// fitRow pads a short row with nulls and drops cells past width.
func fitRow(cells []model.Value, width int) model.Row {
	row := make(model.Row, width)
	for i := 0; i < width; i++ {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = model.Null()
		}
	}
	return row
}

func allNull(cells []model.Value) bool {
	for _, v := range cells {
		if !v.IsNull() {
			return false
		}
	}
	return true
}
