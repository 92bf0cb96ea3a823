package render

import (
	"archive/zip"
	"bytes"
	"strconv"
	"time"

	"reportai-backend/report/model"
)

const (
	// A4 portrait with one inch margins, in twentieths of a point.
	docxPageW      = 11906
	docxPageH      = 16838
	docxMargin     = 1440
	docxTextWidth  = docxPageW - 2*docxMargin
	noDataText     = "No data available"
	defaultCreator = "ReportAI"
)

// DocxRenderer builds a WordprocessingML package in memory.
type DocxRenderer struct {
	Style RenderStyle
}

// NewDocxRenderer constructs a DocxRenderer.
func NewDocxRenderer(style RenderStyle) *DocxRenderer {
	return &DocxRenderer{Style: style}
}

func (r *DocxRenderer) Format() Format { return FormatWord }

// Render samples the dataset and produces the DOCX bytes.
func (r *DocxRenderer) Render(m model.ReportModel, ds model.Dataset, now time.Time) ([]byte, error) {
	b := newDocxBuilder(r.Style)
	Compose(b, Content{Model: m, Table: SamplePreview(ds), Generated: now})
	return b.finish(m, now)
}

type docxBuilder struct {
	style  RenderStyle
	runs   map[string]RunStyle
	body   *xmlNode
	sticky stickyError
}

func newDocxBuilder(style RenderStyle) *docxBuilder {
	return &docxBuilder{
		style:  style,
		runs:   style.RunStyles(),
		body:   el("w:body"),
		sticky: stickyError{format: FormatWord},
	}
}

func (b *docxBuilder) AddTitle(text string) {
	b.body.add(paragraph("Title", "center", nil, run(text, RunStyle{})))
}

func (b *docxBuilder) AddMetadata(fields []MetaField) {
	label := b.runs["metaLabel"]
	for _, f := range fields {
		b.body.add(paragraph("", "", nil,
			run(f.Label+": ", label),
			run(f.Value, RunStyle{}),
		))
	}
	b.body.add(paragraph("", "", nil))
}

func (b *docxBuilder) AddHeading(text string, level int) {
	styleID := "Heading1"
	if level > 1 {
		styleID = "Heading2"
	}
	b.body.add(paragraph(styleID, "", nil, run(text, RunStyle{})))
}

func (b *docxBuilder) AddParagraph(text string) {
	b.body.add(paragraph("", "", nil, run(text, RunStyle{})))
}

func (b *docxBuilder) AddBulletList(items []string) {
	for _, item := range items {
		b.body.add(paragraph("ListBullet", "", numbering(bulletNumID), run(item, RunStyle{})))
	}
}

func (b *docxBuilder) AddNumberedList(items []string) {
	for _, item := range items {
		b.body.add(paragraph("ListNumber", "", numbering(numberedNumID), run(item, RunStyle{})))
	}
}

func (b *docxBuilder) AddTable(header []string, rows [][]model.Value) {
	cols := len(header)
	if cols > MaxSampleCols {
		cols = MaxSampleCols
	}
	if cols == 0 {
		b.AddParagraph(noDataText)
		return
	}

	colW := docxTextWidth / cols
	grid := el("w:tblGrid")
	for i := 0; i < cols; i++ {
		grid.add(el("w:gridCol").attr("w:w", strconv.Itoa(colW)))
	}
	tbl := el("w:tbl",
		el("w:tblPr",
			wval("w:tblStyle", "TableGrid"),
			el("w:tblW").attr("w:w", "5000").attr("w:type", "pct"),
		),
		grid,
	)

	headerRow := el("w:tr", el("w:trPr", el("w:tblHeader")))
	for _, h := range header[:cols] {
		headerRow.add(b.cell(h, colW, b.style.Accent, b.runs["tableHeader"]))
	}
	tbl.add(headerRow)

	for _, r := range rows {
		tr := el("w:tr")
		for j := 0; j < cols; j++ {
			text := ""
			if j < len(r) {
				text = r[j].String()
			}
			tr.add(b.cell(text, colW, b.style.BodyFill, b.runs["tableBody"]))
		}
		tbl.add(tr)
	}

	b.body.add(tbl)
	b.body.add(paragraph("", "", nil))
}

func (b *docxBuilder) cell(text string, width int, fill Color, rs RunStyle) *xmlNode {
	return el("w:tc",
		el("w:tcPr",
			el("w:tcW").attr("w:w", strconv.Itoa(width)).attr("w:type", "dxa"),
			el("w:shd").attr("w:val", "clear").attr("w:color", "auto").attr("w:fill", fill.Hex()),
		),
		paragraph("", "center", nil, run(text, rs)),
	)
}

func (b *docxBuilder) AddPageBreak() {
	b.body.add(el("w:p", el("w:r", el("w:br").attr("w:type", "page"))))
}

func (b *docxBuilder) AddFooter(text string) {
	b.body.add(paragraph("", "", nil))
	b.body.add(paragraph("", "center", nil, run(text, b.runs["footer"])))
}

func (b *docxBuilder) finish(m model.ReportModel, now time.Time) ([]byte, error) {
	b.body.add(el("w:sectPr",
		el("w:pgSz").attr("w:w", strconv.Itoa(docxPageW)).attr("w:h", strconv.Itoa(docxPageH)),
		el("w:pgMar").
			attr("w:top", strconv.Itoa(docxMargin)).
			attr("w:right", strconv.Itoa(docxMargin)).
			attr("w:bottom", strconv.Itoa(docxMargin)).
			attr("w:left", strconv.Itoa(docxMargin)).
			attr("w:header", "708").
			attr("w:footer", "708").
			attr("w:gutter", "0"),
	))
	doc := el("w:document", b.body).
		attr("xmlns:w", wmlNamespace).
		attr("xmlns:r", relNamespace)

	documentXML, err := encodeXMLPart(doc)
	if err != nil {
		b.sticky.fail("encode document.xml", err)
		return nil, b.sticky.result()
	}
	if err := validateDocumentXML(documentXML); err != nil {
		b.sticky.fail("validate document.xml", err)
		return nil, b.sticky.result()
	}
	coreXML, err := encodeXMLPart(coreProperties(m, now))
	if err != nil {
		b.sticky.fail("encode core.xml", err)
		return nil, b.sticky.result()
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"docProps/app.xml", []byte(appXML)},
		{"docProps/core.xml", coreXML},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/document.xml", documentXML},
		{"word/styles.xml", []byte(stylesXML(b.style))},
		{"word/numbering.xml", []byte(numberingXML)},
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, part := range parts {
		if err := writeZipPart(writer, part.name, part.data, now); err != nil {
			b.sticky.fail("zip "+part.name, err)
			return nil, b.sticky.result()
		}
	}
	if err := writer.Close(); err != nil {
		b.sticky.fail("zip close", err)
		return nil, b.sticky.result()
	}
	return output.Bytes(), nil
}

func coreProperties(m model.ReportModel, now time.Time) *xmlNode {
	created := now.UTC().Format(time.RFC3339)
	return el("cp:coreProperties",
		el("dc:title", textNode(m.Title)),
		el("dc:creator", textNode(orPlaceholder(m.Author, defaultCreator))),
		el("cp:lastModifiedBy", textNode(defaultCreator)),
		el("dcterms:created", textNode(created)).attr("xsi:type", "dcterms:W3CDTF"),
		el("dcterms:modified", textNode(created)).attr("xsi:type", "dcterms:W3CDTF"),
	).
		attr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties").
		attr("xmlns:dc", "http://purl.org/dc/elements/1.1/").
		attr("xmlns:dcterms", "http://purl.org/dc/terms/").
		attr("xmlns:dcmitype", "http://purl.org/dc/dcmitype/").
		attr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
}

func paragraph(styleID, align string, numPr *xmlNode, runs ...*xmlNode) *xmlNode {
	p := el("w:p")
	if styleID != "" || align != "" || numPr != nil {
		pPr := el("w:pPr")
		if styleID != "" {
			pPr.add(wval("w:pStyle", styleID))
		}
		pPr.add(numPr)
		if align != "" {
			pPr.add(wval("w:jc", align))
		}
		p.add(pPr)
	}
	return p.add(runs...)
}

func numbering(numID string) *xmlNode {
	return el("w:numPr", wval("w:ilvl", "0"), wval("w:numId", numID))
}

func run(text string, rs RunStyle) *xmlNode {
	r := el("w:r")
	rPr := el("w:rPr")
	if rs.Bold {
		rPr.add(el("w:b"))
	}
	if rs.Italic {
		rPr.add(el("w:i"))
	}
	if rs.Color != "" {
		rPr.add(wval("w:color", rs.Color))
	}
	if rs.Size > 0 {
		size := strconv.Itoa(rs.Size)
		rPr.add(wval("w:sz", size), wval("w:szCs", size))
	}
	if len(rPr.Children) > 0 {
		r.add(rPr)
	}
	return r.add(el("w:t", textNode(text)).attr("xml:space", "preserve"))
}

func writeZipPart(writer *zip.Writer, name string, content []byte, modified time.Time) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	}
	w, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
