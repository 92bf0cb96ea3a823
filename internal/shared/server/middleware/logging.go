package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reportai-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can correlate work.
const (
	FileIDKey   = "fileId"
	FormatKey   = "format"
	ReportIDKey = "reportId"
	JobIDKey    = "jobId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"file_id":     c.GetString(FileIDKey),
			"format":      c.GetString(FormatKey),
			"report_id":   c.GetString(ReportIDKey),
			"job_id":      c.GetString(JobIDKey),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
