package render

import (
	"strings"
	"time"

	"reportai-backend/report/model"
)

const (
	HeadingExecutiveSummary    = "Executive Summary"
	HeadingKeyFindings         = "Key Findings"
	HeadingStatisticalAnalysis = "Statistical Analysis"
	HeadingDataSummary         = "Data Summary"
	HeadingRecommendations     = "Recommendations"
	HeadingConclusion          = "Conclusion"

	noSummary    = "No summary available"
	noStatistics = "No statistical analysis available"
	noConclusion = "No conclusion available"
	notAvailable = "N/A"

	footerAttribution = "Generated by ReportAI - Automated Quality Reports"
	generatedLayout   = "2006-01-02 15:04"
	footerDateLayout  = "2006-01-02"
)

// SectionHeadings lists the report headings in emission order.
var SectionHeadings = []string{
	HeadingExecutiveSummary,
	HeadingKeyFindings,
	HeadingStatisticalAnalysis,
	HeadingDataSummary,
	HeadingRecommendations,
	HeadingConclusion,
}

// MetaField is one label/value line of the metadata block.
type MetaField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// MetaKeyGenerated identifies the render timestamp in the metadata block.
const MetaKeyGenerated = "generated"

// DocumentBuilder is the set of structural operations every format implements.
// Builders record the first failure internally and surface it when finished.
type DocumentBuilder interface {
	AddTitle(text string)
	AddMetadata(fields []MetaField)
	AddHeading(text string, level int)
	AddParagraph(text string)
	AddBulletList(items []string)
	AddNumberedList(items []string)
	AddTable(header []string, rows [][]model.Value)
	AddPageBreak()
	AddFooter(text string)
}

// Content is everything the section walker needs for one render.
type Content struct {
	Model     model.ReportModel
	Table     TableSample
	Generated time.Time
}

// Compose drives a builder through the fixed report section order.
func Compose(b DocumentBuilder, c Content) {
	m := c.Model
	a := m.Analysis

	b.AddTitle(m.Title)
	b.AddMetadata(MetadataFields(m, c.Generated))

	b.AddHeading(HeadingExecutiveSummary, 1)
	b.AddParagraph(orPlaceholder(a.ExecutiveSummary, noSummary))

	b.AddHeading(HeadingKeyFindings, 1)
	b.AddBulletList(nonEmpty(a.KeyFindings))

	b.AddHeading(HeadingStatisticalAnalysis, 1)
	b.AddParagraph(orPlaceholder(a.StatisticalAnalysis, noStatistics))

	b.AddHeading(HeadingDataSummary, 1)
	b.AddTable(c.Table.Columns, c.Table.Rows)

	b.AddPageBreak()

	b.AddHeading(HeadingRecommendations, 1)
	b.AddNumberedList(nonEmpty(a.Recommendations))

	b.AddHeading(HeadingConclusion, 1)
	b.AddParagraph(orPlaceholder(a.Conclusion, noConclusion))

	b.AddFooter(FooterText(c.Generated))
}

// MetadataFields returns the metadata block in display order.
func MetadataFields(m model.ReportModel, generated time.Time) []MetaField {
	return []MetaField{
		{Key: "date", Label: "Date", Value: m.Date},
		{Key: "company", Label: "Company", Value: orPlaceholder(m.Company, notAvailable)},
		{Key: "author", Label: "Author", Value: orPlaceholder(m.Author, notAvailable)},
		{Key: MetaKeyGenerated, Label: "Generated", Value: generated.Format(generatedLayout)},
	}
}

// FooterText returns the attribution line stamped with the render date.
func FooterText(generated time.Time) string {
	return footerAttribution + " | " + generated.Format(footerDateLayout)
}

func orPlaceholder(text, placeholder string) string {
	if strings.TrimSpace(text) == "" {
		return placeholder
	}
	return text
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// stickyError keeps the first failure a builder hits and where it happened.
type stickyError struct {
	format Format
	stage  string
	err    error
}

func (s *stickyError) fail(stage string, err error) {
	if s.err != nil || err == nil {
		return
	}
	s.stage = stage
	s.err = err
}

func (s *stickyError) failed() bool { return s.err != nil }

func (s *stickyError) result() error {
	if s.err == nil {
		return nil
	}
	return &RenderError{Format: s.format, Stage: s.stage, Err: s.err}
}
