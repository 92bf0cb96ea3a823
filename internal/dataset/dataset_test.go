package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reportai-backend/report/model"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{name: "data.csv", want: KindCSV},
		{name: "DATA.XLSX", want: KindXLSX},
		{name: "legacy.xls", wantErr: true},
		{name: "notes.txt", wantErr: true},
	}
	for _, tt := range tests {
		got, err := DetectKind(tt.name)
		if tt.wantErr {
			var verr *model.ValidationError
			if !assert.ErrorAs(t, err, &verr, tt.name) {
				continue
			}
			assert.Equal(t, "file", verr.Field)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind model.Kind
		text string
	}{
		{raw: "", kind: model.KindNull, text: ""},
		{raw: "   ", kind: model.KindNull, text: ""},
		{raw: "12.5", kind: model.KindNumber, text: "12.5"},
		{raw: " -3 ", kind: model.KindNumber, text: "-3"},
		{raw: "TRUE", kind: model.KindBool},
		{raw: "2024-05-01", kind: model.KindTime},
		{raw: "2024-05-01 14:30:00", kind: model.KindTime},
		{raw: "NaN", kind: model.KindString, text: "NaN"},
		{raw: "B-01", kind: model.KindString, text: "B-01"},
	}
	for _, tt := range tests {
		got := InferValue(tt.raw)
		assert.Equalf(t, tt.kind, got.Kind(), "InferValue(%q)", tt.raw)
		if tt.text != "" {
			assert.Equalf(t, tt.text, got.String(), "InferValue(%q)", tt.raw)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{" point ", "", "value", "value", "value_2", "point"})
	assert.Equal(t, []string{"point", "column_2", "value", "value_2", "value_2_2", "point_2"}, got)
}

func TestParseCSV(t *testing.T) {
	input := "\xEF\xBB\xBFpoint,value,ok,measured\n" +
		"P1,1.5,true,2024-05-01\n" +
		"P2,,false\n" +
		",,,\n" +
		"P3,3,true,2024-05-03,extra\n"

	ds, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, ds.Validate())

	assert.Equal(t, []string{"point", "value", "ok", "measured"}, ds.Columns)
	require.Len(t, ds.Rows, 3)

	assert.Equal(t, model.KindNumber, ds.Rows[0][1].Kind())
	assert.Equal(t, model.KindBool, ds.Rows[0][2].Kind())
	assert.Equal(t, model.KindTime, ds.Rows[0][3].Kind())
	assert.True(t, ds.Rows[1][1].IsNull())
	assert.True(t, ds.Rows[1][3].IsNull())
	assert.Len(t, ds.Rows[2], 4)
	assert.Equal(t, "P3", ds.Rows[2][0].String())
}

func TestParseCSVSniffsDelimiter(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader("a;b;c\n1;2;3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ds.Columns)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "3", ds.Rows[0][2].String())

	ds, err = ParseCSV(strings.NewReader("a\tb\n1\t2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Columns)
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "no header")
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)

	rows := [][]any{
		{"point", "value", "ok", "when"},
		{"P1", 1.25, true, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"P2", 7, false},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	parsed, err := Parse("measurements.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{sheet, "Notes"}, parsed.Sheets)

	ds := parsed.Dataset
	require.NoError(t, ds.Validate())
	assert.Equal(t, []string{"point", "value", "ok", "when"}, ds.Columns)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, model.String("P1"), ds.Rows[0][0])
	assert.Equal(t, model.Number(1.25), ds.Rows[0][1])
	assert.Equal(t, model.Bool(true), ds.Rows[0][2])
	assert.Equal(t, model.KindTime, ds.Rows[0][3].Kind())
	assert.Equal(t, 2024, ds.Rows[0][3].TimeValue().Year())
	assert.Equal(t, model.Number(7), ds.Rows[1][1])
	assert.Equal(t, model.Bool(false), ds.Rows[1][2])
	assert.True(t, ds.Rows[1][3].IsNull())
}

func TestParseRejectsBrokenWorkbook(t *testing.T) {
	_, err := Parse("broken.xlsx", strings.NewReader("not a zip"))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNewPreview(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,name\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "%d,n%d\n", i, i)
	}
	parsed, err := Parse("d.csv", strings.NewReader(b.String()))
	require.NoError(t, err)

	p := NewPreview(parsed, DefaultPreviewRows)
	assert.Equal(t, 8, p.Rows)
	assert.Equal(t, 2, p.Columns)
	require.Len(t, p.FirstRows, 5)

	data, err := json.Marshal(p.FirstRows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"n1"}`, string(data))

	assert.Empty(t, NewPreview(Parsed{}, 5).FirstRows)
}
