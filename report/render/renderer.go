package render

import (
	"time"

	"reportai-backend/report/model"
)

// Renderer encodes a report into one output format.
type Renderer interface {
	Format() Format
	Render(m model.ReportModel, ds model.Dataset, now time.Time) ([]byte, error)
}

// NewRenderers returns one renderer per supported format sharing a style.
func NewRenderers(style RenderStyle) map[Format]Renderer {
	return map[Format]Renderer{
		FormatPDF:   NewPDFRenderer(style),
		FormatWord:  NewDocxRenderer(style),
		FormatExcel: NewXlsxRenderer(style),
	}
}
