package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"reportai-backend/report/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header row followed by data rows. The delimiter is
// sniffed from the header line among comma, semicolon and tab.
func ParseCSV(r io.Reader) (model.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(string(data[:min(len(data), 4096)]))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return model.Dataset{}, &model.ValidationError{Field: "file", Message: ErrEmptyFile.Error()}
	}
	if err != nil {
		return model.Dataset{}, &model.ValidationError{Field: "file", Message: fmt.Sprintf("invalid csv header: %v", err)}
	}

	ds := model.Dataset{Columns: normalizeHeader(header)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Dataset{}, &model.ValidationError{Field: "file", Message: fmt.Sprintf("invalid csv: %v", err)}
		}
		cells := make([]model.Value, len(record))
		for i, raw := range record {
			cells[i] = InferValue(raw)
		}
		if allNull(cells) {
			continue
		}
		ds.Rows = append(ds.Rows, fitRow(cells, len(ds.Columns)))
	}
	return ds, nil
}

func sniffDelimiter(sample string) rune {
	if idx := strings.IndexAny(sample, "\r\n"); idx >= 0 {
		sample = sample[:idx]
	}
	best, bestCount := ',', strings.Count(sample, ",")
	for _, candidate := range []rune{';', '\t'} {
		if n := strings.Count(sample, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}
