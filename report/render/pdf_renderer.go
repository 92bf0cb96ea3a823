package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"reportai-backend/report/model"
)

const (
	pdfMargin       = 72.0
	pdfBottomMargin = 36.0
	pdfFont         = "Helvetica"
	pdfMetaLabelW   = 144.0
	pdfMetaValueW   = 288.0
	pdfHeaderRowH   = 20.0
	pdfBodyRowH     = 14.0
)

// PDFRenderer lays the report out as paginated A4 pages.
type PDFRenderer struct {
	Style RenderStyle
}

// NewPDFRenderer constructs a PDFRenderer.
func NewPDFRenderer(style RenderStyle) *PDFRenderer {
	return &PDFRenderer{Style: style}
}

func (r *PDFRenderer) Format() Format { return FormatPDF }

// Render samples the dataset and produces the PDF bytes.
func (r *PDFRenderer) Render(m model.ReportModel, ds model.Dataset, now time.Time) ([]byte, error) {
	b := newPDFBuilder(r.Style)
	Compose(b, Content{Model: m, Table: SamplePreview(ds), Generated: now})
	return b.finish(m, now)
}

type pdfBlockKind int

const (
	pdfParagraph pdfBlockKind = iota
	pdfSpacer
	pdfMeta
	pdfTable
	pdfPageBreak
)

func (k pdfBlockKind) String() string {
	switch k {
	case pdfParagraph:
		return "paragraph"
	case pdfSpacer:
		return "spacer"
	case pdfMeta:
		return "metadata"
	case pdfTable:
		return "table"
	case pdfPageBreak:
		return "page break"
	default:
		return fmt.Sprintf("block(%d)", int(k))
	}
}

type pdfBlock struct {
	kind   pdfBlockKind
	text   string
	size   float64
	bold   bool
	color  Color
	align  string
	height float64
	fields []MetaField
	header []string
	rows   [][]string
}

// pdfBuilder collects a linear flow of blocks; layout happens in finish.
type pdfBuilder struct {
	style  RenderStyle
	blocks []pdfBlock
	sticky stickyError
}

func newPDFBuilder(style RenderStyle) *pdfBuilder {
	return &pdfBuilder{style: style, sticky: stickyError{format: FormatPDF}}
}

func (b *pdfBuilder) text(text string, size float64, bold bool, color Color, align string) {
	b.blocks = append(b.blocks, pdfBlock{kind: pdfParagraph, text: text, size: size, bold: bold, color: color, align: align})
}

func (b *pdfBuilder) space(h float64) {
	b.blocks = append(b.blocks, pdfBlock{kind: pdfSpacer, height: h})
}

func (b *pdfBuilder) AddTitle(text string) {
	b.text(text, b.style.TitleSize, true, b.style.Accent, "C")
	b.space(30)
}

func (b *pdfBuilder) AddMetadata(fields []MetaField) {
	b.blocks = append(b.blocks, pdfBlock{kind: pdfMeta, fields: fields})
	b.space(20)
}

func (b *pdfBuilder) AddHeading(text string, level int) {
	size := b.style.HeadingSize
	if level > 1 {
		size -= float64(2 * (level - 1))
	}
	b.text(text, size, true, b.style.Accent, "L")
	b.space(12)
}

func (b *pdfBuilder) AddParagraph(text string) {
	b.text(text, b.style.BodySize, false, b.style.Text, "L")
	b.space(20)
}

// Findings are numbered in the paginated layout as well.
func (b *pdfBuilder) AddBulletList(items []string) {
	b.AddNumberedList(items)
}

func (b *pdfBuilder) AddNumberedList(items []string) {
	for i, item := range items {
		b.text(fmt.Sprintf("%d. %s", i+1, item), b.style.BodySize, false, b.style.Text, "L")
		b.space(6)
	}
	b.space(14)
}

func (b *pdfBuilder) AddTable(header []string, rows [][]model.Value) {
	cols := len(header)
	if cols > MaxSampleCols {
		cols = MaxSampleCols
	}
	if cols == 0 {
		b.AddParagraph(noDataText)
		return
	}
	block := pdfBlock{kind: pdfTable, header: append([]string(nil), header[:cols]...)}
	for _, r := range rows {
		cells := make([]string, cols)
		for j := 0; j < cols && j < len(r); j++ {
			cells[j] = r[j].String()
		}
		block.rows = append(block.rows, cells)
	}
	b.blocks = append(b.blocks, block)
	b.space(20)
}

func (b *pdfBuilder) AddPageBreak() {
	b.blocks = append(b.blocks, pdfBlock{kind: pdfPageBreak})
}

func (b *pdfBuilder) AddFooter(text string) {
	b.space(40)
	b.text(text, b.style.FooterSize, false, b.style.Muted, "C")
}

func (b *pdfBuilder) finish(m model.ReportModel, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfBottomMargin)
	pdf.SetTitle(m.Title, true)
	pdf.SetAuthor(orPlaceholder(m.Author, "ReportAI"), true)
	pdf.SetCreator("ReportAI", false)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.AddPage()

	l := &pdfLayout{pdf: pdf, style: b.style, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pageW, _ := pdf.GetPageSize()
	l.width = pageW - 2*pdfMargin

	for i, block := range b.blocks {
		l.draw(block)
		if pdf.Err() {
			b.sticky.fail(layoutStage(i, block.kind), pdf.Error())
			break
		}
	}
	if b.sticky.failed() {
		return nil, b.sticky.result()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		b.sticky.fail("output", err)
		return nil, b.sticky.result()
	}
	return buf.Bytes(), nil
}

func layoutStage(i int, kind pdfBlockKind) string {
	return fmt.Sprintf("layout %s #%d", kind, i+1)
}

type pdfLayout struct {
	pdf   *fpdf.Fpdf
	style RenderStyle
	tr    func(string) string
	width float64
}

func (l *pdfLayout) draw(block pdfBlock) {
	pdf := l.pdf
	switch block.kind {
	case pdfParagraph:
		style := ""
		if block.bold {
			style = "B"
		}
		pdf.SetFont(pdfFont, style, block.size)
		pdf.SetTextColor(block.color.RGB())
		pdf.MultiCell(l.width, block.size*1.3, l.tr(block.text), "", block.align, false)
	case pdfSpacer:
		pdf.Ln(block.height)
	case pdfMeta:
		l.drawMeta(block.fields)
	case pdfTable:
		l.drawTable(block.header, block.rows)
	case pdfPageBreak:
		pdf.AddPage()
	}
}

func (l *pdfLayout) drawMeta(fields []MetaField) {
	pdf := l.pdf
	lineH := l.style.BodySize * 1.8
	pdf.SetFont(pdfFont, "", l.style.BodySize)
	for _, f := range fields {
		pdf.SetTextColor(l.style.Muted.RGB())
		pdf.CellFormat(pdfMetaLabelW, lineH, l.tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetTextColor(l.style.Text.RGB())
		pdf.CellFormat(pdfMetaValueW, lineH, l.fit(l.tr(f.Value), pdfMetaValueW), "", 1, "L", false, 0, "")
	}
}

func (l *pdfLayout) drawTable(header []string, rows [][]string) {
	pdf := l.pdf
	colW := l.width / float64(len(header))

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+pdfHeaderRowH+pdfBodyRowH > pageH-pdfBottomMargin {
		pdf.AddPage()
	}

	pdf.SetDrawColor(l.style.Grid.RGB())
	pdf.SetLineWidth(0.75)

	pdf.SetFont(pdfFont, "B", l.style.TableHeaderSize)
	pdf.SetFillColor(l.style.Accent.RGB())
	pdf.SetTextColor(l.style.HeaderText.RGB())
	for _, h := range header {
		pdf.CellFormat(colW, pdfHeaderRowH, l.fit(l.tr(h), colW), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(pdfHeaderRowH)

	pdf.SetFont(pdfFont, "", l.style.TableBodySize)
	pdf.SetFillColor(l.style.BodyFill.RGB())
	pdf.SetTextColor(l.style.Text.RGB())
	for _, r := range rows {
		for _, cell := range r {
			pdf.CellFormat(colW, pdfBodyRowH, l.fit(l.tr(cell), colW), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(pdfBodyRowH)
	}
}

// fit shortens already translated single-byte text to the cell width.
func (l *pdfLayout) fit(text string, width float64) string {
	limit := width - 4
	if l.pdf.GetStringWidth(text) <= limit {
		return text
	}
	for n := len(text) - 1; n > 0; n-- {
		candidate := text[:n] + "..."
		if l.pdf.GetStringWidth(candidate) <= limit {
			return candidate
		}
	}
	return ""
}
