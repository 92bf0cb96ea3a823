package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reportai-backend/internal/queue"
	"reportai-backend/internal/shared/metrics"
	"reportai-backend/internal/shared/telemetry"
	"reportai-backend/report/model"
	"reportai-backend/report/render"
)

// Enqueue validates a generate request, records it as a queued job and
// hands it to the render queue.
func (s *Service) Enqueue(ctx context.Context, req GenerateRequest, requestID string) (Job, error) {
	if s.Queue == nil {
		return Job{}, ErrQueueUnavailable
	}
	if strings.TrimSpace(req.Format) == "" {
		req.Format = string(render.FormatPDF)
	}
	if err := checkRequest(req); err != nil {
		return Job{}, err
	}
	req.FileID = strings.TrimSpace(req.FileID)
	if _, err := s.Repo.GetUpload(ctx, req.FileID); err != nil {
		return Job{}, err
	}

	now := s.now()
	job := Job{
		ID:        uuid.NewString(),
		Status:    JobQueued,
		Request:   req,
		RequestID: requestID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateJob(ctx, job); err != nil {
		return Job{}, fmt.Errorf("record job: %w", err)
	}

	msg := queue.Message{
		JobID:      job.ID,
		RequestID:  requestID,
		EnqueuedAt: now.Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		job.Status = JobFailed
		job.Error = "enqueue failed"
		job.UpdatedAt = s.now()
		if uerr := s.Repo.UpdateJob(ctx, job); uerr != nil {
			telemetry.Warn("render_job_update_failed", map[string]any{"job_id": job.ID, "error": uerr.Error()})
		}
		return Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	metrics.IncJobQueued()
	telemetry.Info("render_job_queued", map[string]any{
		"job_id":     job.ID,
		"file_id":    req.FileID,
		"format":     req.Format,
		"request_id": requestID,
	})
	return job, nil
}

// ProcessJob renders a queued job. Failures caused by the request itself
// mark the job failed and return nil so the message is not redelivered.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.Repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.Warn("render_job_missing", map[string]any{"job_id": jobID})
			return nil
		}
		return err
	}
	if job.Status == JobSucceeded {
		return nil
	}

	job.Status = JobRunning
	job.Attempts++
	job.UpdatedAt = s.now()
	if err := s.Repo.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	rec, genErr := s.Generate(ctx, job.Request)
	if genErr != nil {
		job.Status = JobFailed
		job.Error = genErr.Error()
		job.UpdatedAt = s.now()
		if err := s.Repo.UpdateJob(ctx, job); err != nil {
			telemetry.Warn("render_job_update_failed", map[string]any{"job_id": job.ID, "error": err.Error()})
		}
		metrics.IncJobFailed()
		telemetry.Warn("render_job_failed", map[string]any{
			"job_id":     job.ID,
			"attempts":   job.Attempts,
			"error":      genErr.Error(),
			"request_id": job.RequestID,
		})
		if permanent(genErr) {
			return nil
		}
		return genErr
	}

	job.Status = JobSucceeded
	job.ReportID = rec.ID
	job.FileName = rec.FileName
	job.Error = ""
	job.UpdatedAt = s.now()
	if err := s.Repo.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark job succeeded: %w", err)
	}
	metrics.IncJobCompleted()
	telemetry.Info("render_job_completed", map[string]any{
		"job_id":     job.ID,
		"file_name":  rec.FileName,
		"request_id": job.RequestID,
	})
	return nil
}

// GetJob returns a render job by ID.
func (s *Service) GetJob(ctx context.Context, jobID string) (Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Job{}, ErrNotFound
	}
	return s.Repo.GetJob(ctx, jobID)
}

func checkRequest(req GenerateRequest) error {
	if _, err := render.ParseFormat(req.Format); err != nil {
		return err
	}
	if _, err := model.ParseLanguage(req.Language); err != nil {
		return err
	}
	if strings.TrimSpace(req.FileID) == "" {
		return fmt.Errorf("%w: file_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Title) == "" {
		return &model.ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(req.Date) == "" {
		return &model.ValidationError{Field: "date", Message: "date is required"}
	}
	return nil
}

func permanent(err error) bool {
	var (
		verr        *model.ValidationError
		unsupported *render.UnsupportedFormatError
	)
	return errors.As(err, &verr) ||
		errors.As(err, &unsupported) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput)
}
