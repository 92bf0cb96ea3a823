package render

import (
	"time"

	"reportai-backend/report/model"
)

// Op is one recorded builder call.
type Op struct {
	Kind   string      `json:"kind"`
	Text   string      `json:"text,omitempty"`
	Level  int         `json:"level,omitempty"`
	Items  []string    `json:"items,omitempty"`
	Fields []MetaField `json:"fields,omitempty"`
	Header []string    `json:"header,omitempty"`
	Rows   [][]string  `json:"rows,omitempty"`
}

const (
	OpTitle        = "title"
	OpMetadata     = "metadata"
	OpHeading      = "heading"
	OpParagraph    = "paragraph"
	OpBulletList   = "bullet_list"
	OpNumberedList = "numbered_list"
	OpTable        = "table"
	OpPageBreak    = "page_break"
	OpFooter       = "footer"
)

// OutlineBuilder records the operation sequence instead of encoding it.
type OutlineBuilder struct {
	Ops []Op
}

func (o *OutlineBuilder) AddTitle(text string) {
	o.Ops = append(o.Ops, Op{Kind: OpTitle, Text: text})
}

func (o *OutlineBuilder) AddMetadata(fields []MetaField) {
	o.Ops = append(o.Ops, Op{Kind: OpMetadata, Fields: append([]MetaField(nil), fields...)})
}

func (o *OutlineBuilder) AddHeading(text string, level int) {
	o.Ops = append(o.Ops, Op{Kind: OpHeading, Text: text, Level: level})
}

func (o *OutlineBuilder) AddParagraph(text string) {
	o.Ops = append(o.Ops, Op{Kind: OpParagraph, Text: text})
}

func (o *OutlineBuilder) AddBulletList(items []string) {
	o.Ops = append(o.Ops, Op{Kind: OpBulletList, Items: append([]string(nil), items...)})
}

func (o *OutlineBuilder) AddNumberedList(items []string) {
	o.Ops = append(o.Ops, Op{Kind: OpNumberedList, Items: append([]string(nil), items...)})
}

func (o *OutlineBuilder) AddTable(header []string, rows [][]model.Value) {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, cellTexts(r))
	}
	o.Ops = append(o.Ops, Op{Kind: OpTable, Header: append([]string(nil), header...), Rows: out})
}

func (o *OutlineBuilder) AddPageBreak() {
	o.Ops = append(o.Ops, Op{Kind: OpPageBreak})
}

func (o *OutlineBuilder) AddFooter(text string) {
	o.Ops = append(o.Ops, Op{Kind: OpFooter, Text: text})
}

// Outline returns the operations a document renderer receives for the inputs.
func Outline(m model.ReportModel, ds model.Dataset, now time.Time) []Op {
	var o OutlineBuilder
	Compose(&o, Content{Model: m, Table: SamplePreview(ds), Generated: now})
	return o.Ops
}

func cellTexts(values []model.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
