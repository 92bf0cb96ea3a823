package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf bytes.Buffer
	writeHistogram(&buf, "h", "test", h.Snapshot())

	for _, want := range []string{
		`h_bucket{le="10"} 1`,
		`h_bucket{le="100"} 2`,
		`h_bucket{le="+Inf"} 3`,
		`h_sum 555`,
		`h_count 3`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}
}

func TestRenderIncludesFormatLabels(t *testing.T) {
	IncRender("pdf")
	IncRender("pdf")
	IncRenderFailed("excel")

	out := Render()
	if !strings.Contains(out, `reports_rendered_total{format="pdf"}`) {
		t.Fatalf("expected pdf render counter:\n%s", out)
	}
	if !strings.Contains(out, `reports_failed_total{format="excel"}`) {
		t.Fatalf("expected excel failure counter:\n%s", out)
	}
}

func TestRenderIncludesJobCounters(t *testing.T) {
	IncJobQueued()
	IncJobCompleted()

	out := Render()
	for _, name := range []string{"render_jobs_queued_total", "render_jobs_completed_total", "render_jobs_unrecoverable_total"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output:\n%s", name, out)
		}
	}
}
