package reports

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"reportai-backend/internal/shared/server/middleware"
	"reportai-backend/internal/shared/server/respond"
	"reportai-backend/internal/shared/telemetry"
	"reportai-backend/report/model"
	"reportai-backend/report/render"
)

const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to the router group. generate is
// the middleware chain applied to the generate endpoint only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, generate ...gin.HandlerFunc) {
	rg.POST("/upload", h.upload)
	rg.POST("/analyze", h.analyze)
	rg.POST("/generate", append(generate, h.generate)...)
	rg.POST("/preview", h.preview)
	rg.GET("/download/:filename", h.download)
	rg.DELETE("/cleanup/:file_id", h.cleanup)
	rg.GET("/reports", h.list)
	rg.GET("/jobs/:job_id", h.job)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxUploadBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	up, preview, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.fail(c, err, "failed to process file")
		return
	}
	c.Set(middleware.FileIDKey, up.ID)

	respond.OK(c, gin.H{
		"success":  true,
		"file_id":  up.ID,
		"filename": up.OriginalName,
		"size":     up.SizeBytes,
		"preview":  preview,
	})
}

func (h *Handler) analyze(c *gin.Context) {
	fileID := strings.TrimSpace(c.PostForm("file_id"))
	c.Set(middleware.FileIDKey, fileID)

	result, err := h.Svc.Analyze(c.Request.Context(), fileID, c.PostForm("template_type"), c.PostForm("language"))
	if err != nil {
		h.fail(c, err, "failed to analyze data")
		return
	}
	respond.OK(c, gin.H{
		"success":  true,
		"analysis": result,
	})
}

func (h *Handler) generate(c *gin.Context) {
	req := generateRequestFromForm(c)
	if req.Format == "" {
		req.Format = string(render.FormatPDF)
	}
	c.Set(middleware.FileIDKey, req.FileID)
	c.Set(middleware.FormatKey, req.Format)

	if async, _ := strconv.ParseBool(c.PostForm("async")); async {
		h.enqueue(c, req)
		return
	}

	rec, err := h.Svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to generate report")
		return
	}
	c.Set(middleware.ReportIDKey, rec.ID)

	respond.OK(c, gin.H{
		"success":      true,
		"download_url": "/api/download/" + rec.FileName,
		"filename":     rec.FileName,
	})
}

func (h *Handler) enqueue(c *gin.Context, req GenerateRequest) {
	job, err := h.Svc.Enqueue(c.Request.Context(), req, middleware.RequestIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrQueueUnavailable) {
			respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "asynchronous generation is not available", nil)
			return
		}
		h.fail(c, err, "failed to queue report")
		return
	}
	c.Set(middleware.JobIDKey, job.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"success":    true,
		"job_id":     job.ID,
		"status":     job.Status,
		"status_url": "/api/jobs/" + job.ID,
	})
}

func (h *Handler) job(c *gin.Context) {
	jobID := c.Param("job_id")
	c.Set(middleware.JobIDKey, jobID)

	job, err := h.Svc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Job not found", nil)
			return
		}
		h.fail(c, err, "failed to load job")
		return
	}

	resp := gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"file_id":    job.Request.FileID,
		"format":     job.Request.Format,
		"attempts":   job.Attempts,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.Status == JobSucceeded {
		resp["filename"] = job.FileName
		resp["download_url"] = "/api/download/" + job.FileName
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	respond.OK(c, resp)
}

func (h *Handler) preview(c *gin.Context) {
	req := generateRequestFromForm(c)
	c.Set(middleware.FileIDKey, req.FileID)

	ops, err := h.Svc.Preview(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to preview report")
		return
	}
	respond.OK(c, gin.H{
		"success":    true,
		"operations": ops,
	})
}

func (h *Handler) download(c *gin.Context) {
	name := c.Param("filename")
	rec, rc, err := h.Svc.Download(c.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
		default:
			h.fail(c, err, "failed to open report")
		}
		return
	}
	defer rc.Close()

	if rec.ID != "" {
		c.Set(middleware.ReportIDKey, rec.ID)
	}
	c.Header("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	c.Header("Content-Type", "application/octet-stream")
	if rec.SizeBytes > 0 {
		c.Header("Content-Length", strconv.FormatInt(rec.SizeBytes, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("download_interrupted", map[string]any{
			"file_name":  rec.FileName,
			"error":      err.Error(),
			"request_id": middleware.RequestIDFromContext(c),
		})
	}
}

func (h *Handler) cleanup(c *gin.Context) {
	fileID := c.Param("file_id")
	c.Set(middleware.FileIDKey, fileID)

	if err := h.Svc.Cleanup(c.Request.Context(), fileID); err != nil {
		telemetry.Warn("cleanup_failed", map[string]any{
			"file_id":    fileID,
			"error":      err.Error(),
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.OK(c, gin.H{"success": false, "message": err.Error()})
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "File cleaned up"})
}

func (h *Handler) list(c *gin.Context) {
	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	recs, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list reports", nil)
		return
	}

	resp := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, gin.H{
			"id":           rec.ID,
			"file_id":      rec.FileID,
			"title":        rec.Title,
			"format":       rec.Format,
			"language":     rec.Language,
			"filename":     rec.FileName,
			"size":         rec.SizeBytes,
			"checksum":     rec.Checksum,
			"created_at":   rec.CreatedAt,
			"download_url": "/api/download/" + rec.FileName,
		})
	}
	respond.OK(c, gin.H{"reports": resp})
}

func generateRequestFromForm(c *gin.Context) GenerateRequest {
	return GenerateRequest{
		FileID:       strings.TrimSpace(c.PostForm("file_id")),
		TemplateType: c.PostForm("template_type"),
		Title:        c.PostForm("report_title"),
		Date:         c.PostForm("report_date"),
		Company:      c.PostForm("company_name"),
		Author:       c.PostForm("author_name"),
		Format:       strings.TrimSpace(c.PostForm("output_format")),
		Language:     c.PostForm("language"),
	}
}

// fail maps service errors onto the error envelope.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	var (
		verr        *model.ValidationError
		unsupported *render.UnsupportedFormatError
		rerr        *render.RenderError
	)
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", verr.Error(), gin.H{"field": verr.Field})
	case errors.As(err, &unsupported):
		respond.Error(c, http.StatusBadRequest, "unsupported_format", unsupported.Error(), gin.H{
			"format":    unsupported.Token,
			"supported": render.Formats,
		})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
	case errors.As(err, &rerr):
		respond.Error(c, http.StatusInternalServerError, "render_error", fallback, gin.H{
			"format": rerr.Format,
			"stage":  rerr.Stage,
		})
	default:
		telemetry.Error("request_failed", map[string]any{
			"error":      err.Error(),
			"path":       c.Request.URL.Path,
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
