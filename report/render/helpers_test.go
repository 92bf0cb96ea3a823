package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/require"

	"reportai-backend/report/model"
)

var fixedNow = time.Date(2024, time.May, 1, 14, 30, 0, 0, time.UTC)

var fixtureColumns = []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"}

// fixtureDataset builds rows x cols where cell (i, j>0) reads "<letter>-<row>".
func fixtureDataset(rows, cols int) model.Dataset {
	ds := model.Dataset{Columns: append([]string(nil), fixtureColumns[:cols]...)}
	for i := 0; i < rows; i++ {
		r := make(model.Row, cols)
		for j := 0; j < cols; j++ {
			if j == 0 {
				r[j] = model.Number(float64(i + 1))
				continue
			}
			r[j] = model.String(fmt.Sprintf("%s-%02d", fixtureColumns[j][:1], i+1))
		}
		ds.Rows = append(ds.Rows, r)
	}
	return ds
}

func fixtureModel(t *testing.T, lang string) model.ReportModel {
	t.Helper()
	m, err := model.NewReportModel(model.ReportInput{
		Title:    "Quality Report",
		Date:     "2024-05-01",
		Company:  "Acme Oy",
		Author:   "Jane Analyst",
		Language: lang,
		Analysis: model.AnalysisResult{
			ExecutiveSummary:    "Summary of the measurement campaign.",
			KeyFindings:         []string{"First finding", "Second finding"},
			StatisticalAnalysis: "sample_count: 12",
			Recommendations:     []string{"Recalibrate sensor", "Repeat run"},
			Conclusion:          "Results are acceptable.",
		},
	})
	require.NoError(t, err)
	return m
}

func readZipPart(data []byte, name string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, file := range reader.File {
		if strings.ReplaceAll(file.Name, "\\", "/") != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
	return "", fmt.Errorf("%s not found", name)
}

func readDocumentXML(docxBytes []byte) (string, error) {
	return readZipPart(docxBytes, "word/document.xml")
}

// docxText returns paragraph text joined by newlines.
func docxText(t *testing.T, docxBytes []byte) string {
	t.Helper()
	documentXML, err := readDocumentXML(docxBytes)
	require.NoError(t, err)
	decoder := xml.NewDecoder(strings.NewReader(documentXML))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch tt := tok.(type) {
		case xml.CharData:
			buf.Write(tt)
		case xml.EndElement:
			if tt.Name.Local == "p" {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String()
}

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	plain, err := reader.GetPlainText()
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = io.Copy(&buf, plain)
	require.NoError(t, err)
	return buf.String()
}

// squash drops all whitespace so wrapped lines compare equal to the source.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func requireInOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		idx := strings.Index(text[pos:], p)
		require.GreaterOrEqualf(t, idx, 0, "expected %q after offset %d", p, pos)
		pos += idx + len(p)
	}
}
