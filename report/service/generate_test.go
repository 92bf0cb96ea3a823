package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"reportai-backend/internal/analysis"
	"reportai-backend/internal/shared/storage/object/local"
	"reportai-backend/report/model"
	"reportai-backend/report/render"
)

var fixedNow = time.Date(2024, time.May, 1, 14, 30, 5, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := io.Copy(io.Discard, r)
	p.mu.Lock()
	p.keys = append(p.keys, storageKey)
	p.mu.Unlock()
	return n, err
}

func testDataset() model.Dataset {
	return model.Dataset{
		Columns: []string{"point", "value"},
		Rows: []model.Row{
			{model.String("P1"), model.Number(1.5)},
			{model.String("P2"), model.Number(2.5)},
		},
	}
}

func testModel(t *testing.T, lang string, analysisResult model.AnalysisResult) model.ReportModel {
	t.Helper()
	m, err := model.NewReportModel(model.ReportInput{
		Title:    "Line 3 / Torque check",
		Date:     "2024-05-01",
		Company:  "Acme Oy",
		Language: lang,
		Analysis: analysisResult,
	})
	require.NoError(t, err)
	return m
}

func newTestGenerator(store Publisher) *Generator {
	g := NewGenerator(store, "outputs")
	g.Now = func() time.Time { return fixedNow }
	return g
}

func TestArtifactFileName(t *testing.T) {
	tests := []struct {
		title  string
		format render.Format
		want   string
	}{
		{"Line 3 / Torque check", render.FormatPDF, "Line_3___Torque_check_20240501_143005_0f8e2c1a.pdf"},
		{"Quality Report", render.FormatWord, "Quality_Report_20240501_143005_0f8e2c1a.docx"},
		{"???", render.FormatExcel, "report_20240501_143005_0f8e2c1a.xlsx"},
		{strings.Repeat("Quality ", 40), render.FormatPDF, strings.Repeat("Quality_", 12) + "Qual_20240501_143005_0f8e2c1a.pdf"},
	}
	for _, tt := range tests {
		got := ArtifactFileName(tt.title, fixedNow, "0f8e2c1a-7d4b-4c3e-9a51-2b6f0d9e8c77", tt.format)
		if got != tt.want {
			t.Fatalf("ArtifactFileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestGeneratePublishesArtifact(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(local.New(dir))
	g.NewID = func() string { return "0f8e2c1a-7d4b-4c3e-9a51-2b6f0d9e8c77" }

	art, err := g.Generate(context.Background(), testDataset(), testModel(t, "en", model.AnalysisResult{}), "PDF")
	require.NoError(t, err)

	assert.Equal(t, render.FormatPDF, art.Format)
	assert.Equal(t, "outputs/"+art.FileName, art.StorageKey)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.Equal(t, int64(len(art.Bytes)), art.SizeBytes)
	assert.NotEmpty(t, art.Checksum)
	assert.Equal(t, fixedNow, art.CreatedAt)

	onDisk, err := os.ReadFile(filepath.Join(dir, "outputs", art.FileName))
	require.NoError(t, err)
	assert.Equal(t, art.Bytes, onDisk)
}

func TestGenerateRejectsUnknownFormatBeforeWriting(t *testing.T) {
	pub := &recordingPublisher{}
	g := newTestGenerator(pub)

	_, err := g.Generate(context.Background(), testDataset(), testModel(t, "en", model.AnalysisResult{}), "txt")
	var unsupported *render.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Empty(t, pub.keys)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	pub := &recordingPublisher{}
	g := newTestGenerator(pub)

	m := testModel(t, "en", model.AnalysisResult{})
	m.Title = " "
	_, err := g.Generate(context.Background(), testDataset(), m, "pdf")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	ragged := testDataset()
	ragged.Rows[1] = ragged.Rows[1][:1]
	_, err = g.Generate(context.Background(), ragged, testModel(t, "en", model.AnalysisResult{}), "word")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dataset.rows", verr.Field)
	assert.Empty(t, pub.keys)
}

func TestGeneratePublishFailure(t *testing.T) {
	g := newTestGenerator(&recordingPublisher{err: errors.New("disk full")})

	_, err := g.Generate(context.Background(), testDataset(), testModel(t, "en", model.AnalysisResult{}), "excel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish outputs/")
	assert.Contains(t, err.Error(), "disk full")
}

type failingRenderer struct {
	format render.Format
}

func (r failingRenderer) Format() render.Format { return r.format }

func (r failingRenderer) Render(model.ReportModel, model.Dataset, time.Time) ([]byte, error) {
	return nil, &render.RenderError{Format: r.format, Stage: "data row B2", Err: errors.New("cannot encode cell")}
}

func TestGenerateRenderFailurePublishesNothing(t *testing.T) {
	for _, format := range []render.Format{render.FormatPDF, render.FormatWord, render.FormatExcel} {
		t.Run(string(format), func(t *testing.T) {
			pub := &recordingPublisher{}
			g := newTestGenerator(pub)
			g.Renderers = map[render.Format]render.Renderer{format: failingRenderer{format: format}}

			_, err := g.Generate(context.Background(), testDataset(), testModel(t, "en", model.AnalysisResult{}), string(format))
			var rerr *render.RenderError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, format, rerr.Format)
			assert.Equal(t, "data row B2", rerr.Stage)
			assert.Empty(t, pub.keys)

			dir := t.TempDir()
			g = newTestGenerator(local.New(dir))
			g.Renderers = map[render.Format]render.Renderer{format: failingRenderer{format: format}}
			_, err = g.Generate(context.Background(), testDataset(), testModel(t, "en", model.AnalysisResult{}), string(format))
			require.ErrorAs(t, err, &rerr)

			var leftovers []string
			err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					leftovers = append(leftovers, p)
				}
				return err
			})
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestGenerateLongTitlePublishes(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(local.New(dir))
	m := testModel(t, "en", model.AnalysisResult{})
	m.Title = strings.Repeat("Quality ", 40)

	art, err := g.Generate(context.Background(), testDataset(), m, "pdf")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(art.FileName), 140)
	_, err = os.Stat(filepath.Join(dir, "outputs", art.FileName))
	require.NoError(t, err)
}

// qualityDataset is 12 rows over columns A..G with cells like "C-r07".
func qualityDataset() model.Dataset {
	ds := model.Dataset{Columns: []string{"A", "B", "C", "D", "E", "F", "G"}}
	for i := 1; i <= 12; i++ {
		row := make(model.Row, len(ds.Columns))
		for j, col := range ds.Columns {
			row[j] = model.String(fmt.Sprintf("%s-r%02d", col, i))
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func TestGenerateQualityReportScenario(t *testing.T) {
	m, err := model.NewReportModel(model.ReportInput{Title: "Quality Report", Date: "2024-01-01", Language: "en"})
	require.NoError(t, err)
	ds := qualityDataset()
	g := newTestGenerator(&recordingPublisher{})

	for _, token := range []string{"pdf", "word", "excel"} {
		t.Run(token, func(t *testing.T) {
			art, err := g.Generate(context.Background(), ds, m, token)
			require.NoError(t, err)

			switch art.Format {
			case render.FormatPDF:
				text := squashed(pdfPlainText(t, art.Bytes))
				assert.Contains(t, text, "F-r10")
				assert.NotContains(t, text, "G-r01")
				assert.NotContains(t, text, "A-r11")
			case render.FormatWord:
				doc := zipPart(t, art.Bytes, "word/document.xml")
				assert.Equal(t, 11, strings.Count(doc, "<w:tr>"))
				assert.Equal(t, 66, strings.Count(doc, "<w:tc>"))
				assert.Contains(t, doc, "F-r10")
				assert.NotContains(t, doc, "G-r01")
				assert.NotContains(t, doc, "A-r11")
			case render.FormatExcel:
				f, err := excelize.OpenReader(bytes.NewReader(art.Bytes))
				require.NoError(t, err)
				defer f.Close()
				rows, err := f.GetRows(render.DataSheet)
				require.NoError(t, err)
				require.Len(t, rows, 13)
				assert.Equal(t, ds.Columns, rows[0])
				assert.Equal(t, []string{"A-r12", "B-r12", "C-r12", "D-r12", "E-r12", "F-r12", "G-r12"}, rows[12])
			}
		})
	}
}

func TestGenerateConcurrentSameTitleGetsDistinctNames(t *testing.T) {
	pub := &recordingPublisher{}
	g := newTestGenerator(pub)
	m := testModel(t, "en", model.AnalysisResult{})

	const n = 4
	var wg sync.WaitGroup
	names := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			art, err := g.Generate(context.Background(), testDataset(), m, "pdf")
			names[i], errs[i] = art.FileName, err
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[names[i]], "duplicate name %s", names[i])
		seen[names[i]] = true
	}
	assert.Len(t, pub.keys, n)
}

func TestGenerateFinnishFallbackInEveryFormat(t *testing.T) {
	ds := testDataset()
	result := analysis.NewAnalyzer(nil).Analyze(context.Background(), analysis.Summarize(ds), "", model.LanguageFI)
	m := testModel(t, "fi", result)
	g := newTestGenerator(&recordingPublisher{})

	const summary = "Tämä on esimerkkiraportti testing-tyyppiselle analyysille. Mittausdatasta löytyi useita mielenkiintoisia havaintoja."
	const conclusion = "Mittaustulokset ovat luotettavia ja vastaavat laadullisia vaatimuksia."

	for _, token := range []string{"pdf", "word", "excel"} {
		t.Run(token, func(t *testing.T) {
			art, err := g.Generate(context.Background(), ds, m, token)
			require.NoError(t, err)

			switch art.Format {
			case render.FormatWord:
				doc := zipPart(t, art.Bytes, "word/document.xml")
				assert.Contains(t, doc, summary)
				assert.Contains(t, doc, conclusion)
			case render.FormatExcel:
				f, err := excelize.OpenReader(bytes.NewReader(art.Bytes))
				require.NoError(t, err)
				defer f.Close()
				got, err := f.GetCellValue(render.SummarySheet, "A8")
				require.NoError(t, err)
				assert.Equal(t, summary, got)
				rows, err := f.GetRows(render.SummarySheet)
				require.NoError(t, err)
				var firstColumn []string
				for _, r := range rows {
					if len(r) > 0 {
						firstColumn = append(firstColumn, r[0])
					}
				}
				assert.Contains(t, firstColumn, conclusion)
			case render.FormatPDF:
				text := squashed(pdfPlainText(t, art.Bytes))
				assert.Contains(t, text, "esimerkkiraportti")
				assert.Contains(t, text, "testing-tyyppiselle")
				assert.Contains(t, text, "Mittaustuloksetovatluotettavia")
			}
		})
	}
}

func zipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("%s not found", name)
	return ""
}

func pdfPlainText(t *testing.T, data []byte) string {
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

func squashed(s string) string {
	return strings.Join(strings.Fields(s), "")
}
