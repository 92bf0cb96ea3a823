package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportai-backend/report/model"
)

func TestDocxRendererPackageParts(t *testing.T) {
	data, err := NewDocxRenderer(DefaultStyle()).Render(fixtureModel(t, "en"), fixtureDataset(12, 7), fixedNow)
	require.NoError(t, err)

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"word/_rels/document.xml.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/numbering.xml",
	} {
		_, err := readZipPart(data, name)
		assert.NoErrorf(t, err, "part %s", name)
	}

	core, err := readZipPart(data, "docProps/core.xml")
	require.NoError(t, err)
	assert.Contains(t, core, "<dc:title>Quality Report</dc:title>")
	assert.Contains(t, core, "2024-05-01T14:30:00Z")
}

func TestDocxRendererSectionsInOrder(t *testing.T) {
	data, err := NewDocxRenderer(DefaultStyle()).Render(fixtureModel(t, "en"), fixtureDataset(12, 7), fixedNow)
	require.NoError(t, err)

	text := docxText(t, data)
	requireInOrder(t, text,
		"Quality Report\n",
		"Date: 2024-05-01\n", "Company: Acme Oy\n", "Author: Jane Analyst\n", "Generated: 2024-05-01 14:30\n",
		"Executive Summary\n", "Summary of the measurement campaign.\n",
		"Key Findings\n", "First finding\n", "Second finding\n",
		"Statistical Analysis\n", "sample_count: 12\n",
		"Data Summary\n",
		"Recommendations\n", "Recalibrate sensor\n", "Repeat run\n",
		"Conclusion\n", "Results are acceptable.\n",
		"Generated by ReportAI - Automated Quality Reports | 2024-05-01\n",
	)
}

func TestDocxRendererTableShape(t *testing.T) {
	data, err := NewDocxRenderer(DefaultStyle()).Render(fixtureModel(t, "en"), fixtureDataset(12, 7), fixedNow)
	require.NoError(t, err)
	documentXML, err := readDocumentXML(data)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(documentXML, "<w:tbl>"))
	assert.Equal(t, 11, strings.Count(documentXML, "<w:tr>"))
	assert.Equal(t, 6, strings.Count(documentXML, "<w:gridCol "))
	assert.Equal(t, 66, strings.Count(documentXML, "<w:tc>"))
	assert.Equal(t, 1, strings.Count(documentXML, "<w:tblHeader></w:tblHeader>"))
	assert.Contains(t, documentXML, `w:fill="00FF88"`)
	assert.Contains(t, documentXML, `w:fill="F5F5DC"`)
	assert.NotContains(t, documentXML, "Golf")
	assert.NotContains(t, documentXML, "B-11")
	assert.Contains(t, documentXML, "F-10")
}

func TestDocxRendererPageBreakBeforeRecommendations(t *testing.T) {
	data, err := NewDocxRenderer(DefaultStyle()).Render(fixtureModel(t, "en"), fixtureDataset(2, 2), fixedNow)
	require.NoError(t, err)
	documentXML, err := readDocumentXML(data)
	require.NoError(t, err)

	requireInOrder(t, documentXML, "Data Summary", "</w:tbl>", `<w:br w:type="page">`, "Recommendations")
	assert.Equal(t, 2, strings.Count(documentXML, `<w:pStyle w:val="ListBullet">`))
	assert.Equal(t, 2, strings.Count(documentXML, `<w:pStyle w:val="ListNumber">`))
}

func TestDocxRendererEmptyDataset(t *testing.T) {
	m := fixtureModel(t, "en")
	m.Author = ""
	data, err := NewDocxRenderer(DefaultStyle()).Render(m, model.Dataset{}, fixedNow)
	require.NoError(t, err)

	text := docxText(t, data)
	assert.Contains(t, text, "Author: N/A\n")
	requireInOrder(t, text, "Data Summary\n", "No data available\n", "Recommendations\n")

	documentXML, err := readDocumentXML(data)
	require.NoError(t, err)
	assert.NotContains(t, documentXML, "<w:tbl>")
}

func TestDocxRendererEscapesText(t *testing.T) {
	m := fixtureModel(t, "en")
	m.Title = `Q&A <draft> "v2"`
	data, err := NewDocxRenderer(DefaultStyle()).Render(m, fixtureDataset(1, 1), fixedNow)
	require.NoError(t, err)

	assert.Contains(t, docxText(t, data), "Q&A <draft> \"v2\"\n")
}

func TestValidateDocumentXMLRejectsBrokenStructure(t *testing.T) {
	header := `<w:document xmlns:w="` + wmlNamespace + `"><w:body>`
	footer := `</w:body></w:document>`

	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{name: "plain paragraph", body: `<w:p><w:r><w:t>x</w:t></w:r></w:p>`, ok: true},
		{name: "nested paragraph", body: `<w:p><w:p></w:p></w:p>`},
		{name: "row wider than grid", body: `<w:tbl><w:tblGrid><w:gridCol/></w:tblGrid><w:tr><w:tc/><w:tc/></w:tr></w:tbl>`},
		{name: "row without grid", body: `<w:tbl><w:tr><w:tc/></w:tr></w:tbl>`},
		{name: "matching row", body: `<w:tbl><w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid><w:tr><w:tc/><w:tc/></w:tr></w:tbl>`, ok: true},
	}
	for _, tt := range tests {
		err := validateDocumentXML([]byte(header + tt.body + footer))
		if tt.ok {
			assert.NoError(t, err, tt.name)
		} else {
			assert.Error(t, err, tt.name)
		}
	}
}
