package render

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"reportai-backend/report/model"
)

const (
	SummarySheet = "Summary"
	DataSheet    = "Data"
)

// XlsxRenderer writes a Summary sheet with the narrative and a Data sheet
// holding the complete dataset.
type XlsxRenderer struct {
	Style RenderStyle
}

// NewXlsxRenderer constructs an XlsxRenderer.
func NewXlsxRenderer(style RenderStyle) *XlsxRenderer {
	return &XlsxRenderer{Style: style}
}

func (r *XlsxRenderer) Format() Format { return FormatExcel }

// Render produces the XLSX bytes. The Data sheet is never truncated.
func (r *XlsxRenderer) Render(m model.ReportModel, ds model.Dataset, now time.Time) ([]byte, error) {
	b := newXlsxBuilder(r.Style)
	defer b.close()
	Compose(b, Content{Model: m, Table: Full(ds), Generated: now})
	return b.finish(m, now)
}

type xlsxStyles struct {
	title, heading, wrap, label, dataHeader, dataBody, footer int
}

type xlsxBuilder struct {
	style  RenderStyle
	f      *excelize.File
	ids    xlsxStyles
	row    int
	used   bool
	sticky stickyError
}

func newXlsxBuilder(style RenderStyle) *xlsxBuilder {
	b := &xlsxBuilder{
		style:  style,
		f:      excelize.NewFile(),
		row:    1,
		sticky: stickyError{format: FormatExcel},
	}
	b.sticky.fail("rename sheet", b.f.SetSheetName("Sheet1", SummarySheet))
	if _, err := b.f.NewSheet(DataSheet); err != nil {
		b.sticky.fail("create data sheet", err)
	}
	b.sticky.fail("summary column width", b.f.SetColWidth(SummarySheet, "A", "A", 90))
	b.sticky.fail("summary column width", b.f.SetColWidth(SummarySheet, "B", "B", 40))
	b.ids = b.newStyles()
	return b
}

func (b *xlsxBuilder) newStyles() xlsxStyles {
	var ids xlsxStyles
	define := func(name string, s *excelize.Style) int {
		id, err := b.f.NewStyle(s)
		b.sticky.fail("style "+name, err)
		return id
	}
	ids.title = define("title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: b.style.SheetTitleSize}})
	ids.heading = define("heading", &excelize.Style{Font: &excelize.Font{Bold: true, Size: b.style.SheetHeadingSize}})
	ids.wrap = define("wrap", &excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	ids.label = define("label", &excelize.Style{Font: &excelize.Font{Color: b.style.Muted.Hex()}})
	ids.dataHeader = define("data header", &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: b.style.HeaderText.Hex()},
		Fill: excelize.Fill{Type: "pattern", Color: []string{b.style.Accent.Hex()}, Pattern: 1},
	})
	grid := b.style.Grid.Hex()
	ids.dataBody = define("data body", &excelize.Style{Border: []excelize.Border{
		{Type: "left", Color: grid, Style: 1},
		{Type: "top", Color: grid, Style: 1},
		{Type: "right", Color: grid, Style: 1},
		{Type: "bottom", Color: grid, Style: 1},
	}})
	ids.footer = define("footer", &excelize.Style{Font: &excelize.Font{Italic: true, Size: b.style.FooterSize, Color: b.style.Muted.Hex()}})
	return ids
}

// put writes one Summary cell and applies a style when styleID > 0.
func (b *xlsxBuilder) put(col, row int, value any, styleID int) {
	if b.sticky.failed() {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		b.sticky.fail("cell name", err)
		return
	}
	b.sticky.fail("write "+cell, b.f.SetCellValue(SummarySheet, cell, value))
	if styleID > 0 {
		b.sticky.fail("style "+cell, b.f.SetCellStyle(SummarySheet, cell, cell, styleID))
	}
}

// startBlock leaves one blank row between consecutive blocks.
func (b *xlsxBuilder) startBlock() {
	if b.used {
		b.row++
	}
	b.used = true
}

func (b *xlsxBuilder) AddTitle(text string) {
	b.startBlock()
	b.put(1, b.row, text, b.ids.title)
	b.row++
}

// AddMetadata writes Date, Company and Author rows. The render timestamp
// goes into the workbook properties instead of a row.
func (b *xlsxBuilder) AddMetadata(fields []MetaField) {
	b.startBlock()
	for _, f := range fields {
		if f.Key == MetaKeyGenerated {
			continue
		}
		b.put(1, b.row, f.Label+":", b.ids.label)
		b.put(2, b.row, f.Value, 0)
		b.row++
	}
}

func (b *xlsxBuilder) AddHeading(text string, level int) {
	b.startBlock()
	b.put(1, b.row, text, b.ids.heading)
	b.row++
}

func (b *xlsxBuilder) AddParagraph(text string) {
	b.put(1, b.row, text, b.ids.wrap)
	b.row++
}

func (b *xlsxBuilder) AddBulletList(items []string) {
	for _, item := range items {
		b.put(1, b.row, "• "+item, b.ids.wrap)
		b.row++
	}
}

func (b *xlsxBuilder) AddNumberedList(items []string) {
	for i, item := range items {
		b.put(1, b.row, fmt.Sprintf("%d. %s", i+1, item), b.ids.wrap)
		b.row++
	}
}

// AddTable writes the table to the Data sheet and leaves a pointer to it
// on the Summary sheet.
func (b *xlsxBuilder) AddTable(header []string, rows [][]model.Value) {
	b.AddParagraph(fmt.Sprintf("See sheet %q: %d rows, %d columns.", DataSheet, len(rows), len(header)))
	if b.sticky.failed() || len(header) == 0 {
		return
	}

	for j, h := range header {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			b.sticky.fail("data header", err)
			return
		}
		b.sticky.fail("data header "+cell, b.f.SetCellStr(DataSheet, cell, h))
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		b.sticky.fail("data header", err)
		return
	}
	b.sticky.fail("data header style", b.f.SetCellStyle(DataSheet, "A1", last, b.ids.dataHeader))

	// The gridded body range materializes every data row, including rows
	// that hold only blank cells.
	lastRow := len(rows) + 1
	corner, err := excelize.CoordinatesToCellName(len(header), lastRow)
	if err != nil {
		b.sticky.fail("data range", err)
		return
	}
	if len(rows) > 0 {
		b.sticky.fail("data body style", b.f.SetCellStyle(DataSheet, "A2", corner, b.ids.dataBody))
	}
	b.sticky.fail("data dimension", b.f.SetSheetDimension(DataSheet, "A1:"+corner))

	for i, r := range rows {
		for j, v := range r {
			value, ok := sheetValue(v)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				b.sticky.fail("data row", err)
				return
			}
			b.sticky.fail("data row "+cell, b.f.SetCellValue(DataSheet, cell, value))
		}
		if b.sticky.failed() {
			return
		}
	}
}

// sheetValue returns the cell value for v. Nulls and non-finite numbers
// stay blank, the same as their JSON encoding.
func sheetValue(v model.Value) (any, bool) {
	if v.Kind() == model.KindNumber {
		f, ok := v.Float()
		return f, ok
	}
	if v.IsNull() {
		return nil, false
	}
	return v.Interface(), true
}

func (b *xlsxBuilder) AddPageBreak() {
	if b.sticky.failed() {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, b.row+1)
	if err != nil {
		b.sticky.fail("page break", err)
		return
	}
	b.sticky.fail("page break", b.f.InsertPageBreak(SummarySheet, cell))
}

func (b *xlsxBuilder) AddFooter(text string) {
	b.startBlock()
	b.put(1, b.row, text, b.ids.footer)
	b.row++
}

func (b *xlsxBuilder) finish(m model.ReportModel, now time.Time) ([]byte, error) {
	created := now.UTC().Format(time.RFC3339)
	b.sticky.fail("doc props", b.f.SetDocProps(&excelize.DocProperties{
		Title:          m.Title,
		Creator:        orPlaceholder(m.Author, defaultCreator),
		LastModifiedBy: defaultCreator,
		Created:        created,
		Modified:       created,
		Language:       string(m.Language),
	}))
	b.f.SetActiveSheet(0)
	if b.sticky.failed() {
		return nil, b.sticky.result()
	}

	buf, err := b.f.WriteToBuffer()
	if err != nil {
		b.sticky.fail("write workbook", err)
		return nil, b.sticky.result()
	}
	return buf.Bytes(), nil
}

func (b *xlsxBuilder) close() {
	_ = b.f.Close()
}
