package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportai-backend/report/model"
)

func TestComposeSectionOrder(t *testing.T) {
	ops := Outline(fixtureModel(t, "en"), fixtureDataset(12, 7), fixedNow)

	kinds := make([]string, 0, len(ops))
	for _, op := range ops {
		kinds = append(kinds, op.Kind)
	}
	assert.Equal(t, []string{
		OpTitle, OpMetadata,
		OpHeading, OpParagraph,
		OpHeading, OpBulletList,
		OpHeading, OpParagraph,
		OpHeading, OpTable,
		OpPageBreak,
		OpHeading, OpNumberedList,
		OpHeading, OpParagraph,
		OpFooter,
	}, kinds)

	var headings []string
	for _, op := range ops {
		if op.Kind == OpHeading {
			headings = append(headings, op.Text)
		}
	}
	assert.Equal(t, SectionHeadings, headings)
}

func TestComposeMetadataAndFooter(t *testing.T) {
	m := fixtureModel(t, "en")
	m.Company = ""
	ops := Outline(m, fixtureDataset(1, 1), fixedNow)

	require.Equal(t, OpMetadata, ops[1].Kind)
	assert.Equal(t, []MetaField{
		{Key: "date", Label: "Date", Value: "2024-05-01"},
		{Key: "company", Label: "Company", Value: "N/A"},
		{Key: "author", Label: "Author", Value: "Jane Analyst"},
		{Key: MetaKeyGenerated, Label: "Generated", Value: "2024-05-01 14:30"},
	}, ops[1].Fields)

	last := ops[len(ops)-1]
	assert.Equal(t, "Generated by ReportAI - Automated Quality Reports | 2024-05-01", last.Text)
}

func TestComposePlaceholdersForEmptyAnalysis(t *testing.T) {
	m := fixtureModel(t, "en")
	m.Analysis = model.AnalysisResult{KeyFindings: []string{"  ", ""}}
	ops := Outline(m, model.Dataset{}, fixedNow)

	var paragraphs []string
	for _, op := range ops {
		switch op.Kind {
		case OpParagraph:
			paragraphs = append(paragraphs, op.Text)
		case OpBulletList, OpNumberedList:
			assert.Empty(t, op.Items)
		}
	}
	assert.Equal(t, []string{noSummary, noStatistics, noConclusion}, paragraphs)
}

func TestOutlineTableUsesPreviewSample(t *testing.T) {
	ops := Outline(fixtureModel(t, "en"), fixtureDataset(12, 7), fixedNow)
	for _, op := range ops {
		if op.Kind != OpTable {
			continue
		}
		assert.Equal(t, fixtureColumns[:6], op.Header)
		require.Len(t, op.Rows, 10)
		assert.Equal(t, []string{"10", "B-10", "C-10", "D-10", "E-10", "F-10"}, op.Rows[9])
		return
	}
	t.Fatal("table op not found")
}

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		token string
		want  Format
		ext   string
	}{
		{"pdf", FormatPDF, "pdf"},
		{"word", FormatWord, "docx"},
		{" EXCEL ", FormatExcel, "xlsx"},
	} {
		got, err := ParseFormat(tc.token)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.ext, got.Extension())
	}

	_, err := ParseFormat("txt")
	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "txt", unsupported.Token)
}

func TestStickyErrorKeepsFirstFailure(t *testing.T) {
	s := stickyError{format: FormatExcel}
	s.fail("first", assert.AnError)
	s.fail("second", assert.AnError)

	var rerr *RenderError
	require.ErrorAs(t, s.result(), &rerr)
	assert.Equal(t, "first", rerr.Stage)
	assert.Equal(t, FormatExcel, rerr.Format)
	assert.ErrorIs(t, rerr, assert.AnError)
}

func TestColorRGB(t *testing.T) {
	r, g, b := AccentColor.RGB()
	assert.Equal(t, []int{0, 255, 136}, []int{r, g, b})
	r, g, b = Color("zz").RGB()
	assert.Equal(t, []int{0, 0, 0}, []int{r, g, b})
}
