package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal          atomic.Uint64
	analysisFallbackTotal atomic.Uint64

	jobsQueued        atomic.Uint64
	jobsReceived      atomic.Uint64
	jobsCompleted     atomic.Uint64
	jobsFailed        atomic.Uint64
	jobsUnrecoverable atomic.Uint64

	renders  = newLabeledCounters()
	failures = newLabeledCounters()

	renderDuration = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

// IncUpload counts an accepted dataset upload.
func IncUpload() {
	uploadsTotal.Add(1)
}

// IncAnalysisFallback counts analyses served from the built-in fallback text.
func IncAnalysisFallback() {
	analysisFallbackTotal.Add(1)
}

// IncRender counts a successfully published artifact for a format.
func IncRender(format string) {
	renders.inc(format)
}

// IncRenderFailed counts a failed generation for a format.
func IncRenderFailed(format string) {
	failures.inc(format)
}

// ObserveRenderDurationMs records a render duration in milliseconds.
func ObserveRenderDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	renderDuration.Observe(value)
}

// IncJobQueued counts a render job accepted for asynchronous processing.
func IncJobQueued() { jobsQueued.Add(1) }

// IncJobReceived counts a queue message picked up by a worker.
func IncJobReceived() { jobsReceived.Add(1) }

// IncJobCompleted counts a render job that published its artifact.
func IncJobCompleted() { jobsCompleted.Add(1) }

// IncJobFailed counts a render job attempt that failed.
func IncJobFailed() { jobsFailed.Add(1) }

// IncJobDeletedUnrecoverable counts queue messages dropped as unprocessable.
func IncJobDeletedUnrecoverable() { jobsUnrecoverable.Add(1) }

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "dataset_uploads_total", "Total datasets accepted", uploadsTotal.Load())
	writeCounter(&buf, "analysis_fallback_total", "Total analyses served from fallback text", analysisFallbackTotal.Load())
	writeCounter(&buf, "render_jobs_queued_total", "Total render jobs queued", jobsQueued.Load())
	writeCounter(&buf, "render_jobs_received_total", "Total render job messages received by workers", jobsReceived.Load())
	writeCounter(&buf, "render_jobs_completed_total", "Total render jobs completed", jobsCompleted.Load())
	writeCounter(&buf, "render_jobs_failed_total", "Total render job attempts that failed", jobsFailed.Load())
	writeCounter(&buf, "render_jobs_unrecoverable_total", "Total render job messages deleted as unprocessable", jobsUnrecoverable.Load())
	writeLabeledCounter(&buf, "reports_rendered_total", "Total reports published", "format", renders.snapshot())
	writeLabeledCounter(&buf, "reports_failed_total", "Total report generations that failed", "format", failures.snapshot())
	writeHistogram(&buf, "report_render_duration_ms", "Report render duration in milliseconds", renderDuration.Snapshot())
	return buf.String()
}

type labeledCounters struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounters() *labeledCounters {
	return &labeledCounters{values: make(map[string]uint64)}
}

func (l *labeledCounters) inc(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[label]++
}

func (l *labeledCounters) snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds the value to the first bucket that holds it; cumulative
// counts are computed when writing.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
