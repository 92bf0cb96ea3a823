package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the scalar held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindTime
	KindBool
)

// Value is a single dataset cell.
type Value struct {
	kind Kind
	num  float64
	str  string
	at   time.Time
	b    bool
}

// Null returns the empty cell value.
func Null() Value { return Value{} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a text cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Time wraps a date or timestamp cell.
func Time(t time.Time) Value { return Value{kind: KindTime, at: t} }

// Bool wraps a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) TimeValue() time.Time { return v.at }

func (v Value) BoolValue() bool { return v.b }

// Float returns the numeric payload when the value is a finite number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber || math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return 0, false
	}
	return v.num, true
}

// String renders the value for display in document tables.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindTime:
		if v.at.Hour() == 0 && v.at.Minute() == 0 && v.at.Second() == 0 {
			return v.at.Format("2006-01-02")
		}
		return v.at.Format("2006-01-02 15:04:05")
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Interface returns the native Go value, nil for null.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindTime:
		return v.at
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if _, ok := v.Float(); !ok {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindTime:
		return json.Marshal(v.String())
	default:
		return json.Marshal(v.Interface())
	}
}

// Row holds values positionally aligned with Dataset.Columns.
type Row []Value

// Dataset is an ordered table of named columns.
type Dataset struct {
	Columns []string
	Rows    []Row
}

func (d Dataset) NumRows() int { return len(d.Rows) }
func (d Dataset) NumCols() int { return len(d.Columns) }

// ColumnIndex returns the position of a column or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value looks up a cell by row index and column name.
func (d Dataset) Value(row int, column string) (Value, bool) {
	if row < 0 || row >= len(d.Rows) {
		return Value{}, false
	}
	idx := d.ColumnIndex(column)
	if idx < 0 || idx >= len(d.Rows[row]) {
		return Value{}, false
	}
	return d.Rows[row][idx], true
}

// Validate checks column names are unique and non-empty and every row
// has exactly one value per column.
func (d Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Columns))
	for i, c := range d.Columns {
		if strings.TrimSpace(c) == "" {
			return &ValidationError{Field: "dataset.columns", Message: fmt.Sprintf("column %d has no name", i+1)}
		}
		if _, ok := seen[c]; ok {
			return &ValidationError{Field: "dataset.columns", Message: fmt.Sprintf("duplicate column %q", c)}
		}
		seen[c] = struct{}{}
	}
	for i, r := range d.Rows {
		if len(r) != len(d.Columns) {
			return &ValidationError{
				Field:   "dataset.rows",
				Message: fmt.Sprintf("row %d has %d values, want %d", i+1, len(r), len(d.Columns)),
			}
		}
	}
	return nil
}
