package reports

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"reportai-backend/internal/queue"
	"reportai-backend/report/service"
)

type recordingQueue struct {
	msgs []queue.Message
	err  error
}

func (q *recordingQueue) Send(_ context.Context, msg queue.Message) error {
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) SaveWithKey(context.Context, string, string, io.Reader) (int64, error) {
	return 0, errors.New("bucket unavailable")
}

func uploadForJob(t *testing.T, svc *Service) string {
	t.Helper()
	up, _, err := svc.Upload(context.Background(), "d.csv", strings.NewReader("x,y\n1,2\n"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return up.ID
}

func jobRequest(fileID string) GenerateRequest {
	return GenerateRequest{FileID: fileID, Title: "Line check", Date: "2024-05-01", Format: "word"}
}

func TestEnqueueAndProcessJob(t *testing.T) {
	svc := newTestService(t)
	q := &recordingQueue{}
	svc.Queue = q
	ctx := context.Background()

	job, err := svc.Enqueue(ctx, jobRequest(uploadForJob(t, svc)), "req-1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Status != JobQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}
	if len(q.msgs) != 1 || q.msgs[0].JobID != job.ID || q.msgs[0].RequestID != "req-1" || q.msgs[0].Version != queue.MessageVersion {
		t.Fatalf("unexpected messages %+v", q.msgs)
	}

	if err := svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	done, err := svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if done.Status != JobSucceeded || done.Attempts != 1 || !strings.HasSuffix(done.FileName, ".docx") || done.ReportID == "" {
		t.Fatalf("unexpected job %+v", done)
	}
	if _, rc, err := svc.Download(ctx, done.FileName); err != nil {
		t.Fatalf("Download: %v", err)
	} else {
		rc.Close()
	}

	if err := svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("redelivered ProcessJob: %v", err)
	}
	again, _ := svc.GetJob(ctx, job.ID)
	if again.Attempts != 1 {
		t.Fatalf("succeeded job must not rerun, attempts=%d", again.Attempts)
	}
}

func TestEnqueueValidatesBeforeQueueing(t *testing.T) {
	svc := newTestService(t)
	q := &recordingQueue{}
	svc.Queue = q
	fileID := uploadForJob(t, svc)

	tests := []struct {
		name string
		req  GenerateRequest
		want error
	}{
		{name: "missing upload", req: jobRequest("nope"), want: ErrNotFound},
		{name: "missing file id", req: jobRequest(""), want: ErrInvalidInput},
	}
	for _, tt := range tests {
		if _, err := svc.Enqueue(context.Background(), tt.req, ""); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	bad := jobRequest(fileID)
	bad.Format = "txt"
	if _, err := svc.Enqueue(context.Background(), bad, ""); err == nil || !permanent(err) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	bad = jobRequest(fileID)
	bad.Title = " "
	if _, err := svc.Enqueue(context.Background(), bad, ""); err == nil || !permanent(err) {
		t.Fatalf("expected title validation error, got %v", err)
	}
	if len(q.msgs) != 0 {
		t.Fatalf("invalid requests must not be queued: %+v", q.msgs)
	}
}

func TestEnqueueWithoutQueue(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Enqueue(context.Background(), jobRequest(uploadForJob(t, svc)), ""); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
}

func TestEnqueueSendFailureMarksJobFailed(t *testing.T) {
	svc := newTestService(t)
	repo := svc.Repo.(*MemoryRepo)
	svc.Queue = &recordingQueue{err: queue.ErrQueueFull}

	_, err := svc.Enqueue(context.Background(), jobRequest(uploadForJob(t, svc)), "")
	if !errors.Is(err, queue.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	for _, job := range repo.jobs {
		if job.Status != JobFailed || job.Error == "" {
			t.Fatalf("expected failed job, got %+v", job)
		}
	}
}

func TestProcessJobPermanentFailure(t *testing.T) {
	svc := newTestService(t)
	svc.Queue = &recordingQueue{}
	ctx := context.Background()
	fileID := uploadForJob(t, svc)

	job, err := svc.Enqueue(ctx, jobRequest(fileID), "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.Cleanup(ctx, fileID); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if err := svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("permanent failure should be acknowledged, got %v", err)
	}
	got, _ := svc.GetJob(ctx, job.ID)
	if got.Status != JobFailed || got.Error == "" {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestProcessJobTransientFailureIsRetried(t *testing.T) {
	svc := newTestService(t)
	svc.Queue = &recordingQueue{}
	ctx := context.Background()

	job, err := svc.Enqueue(ctx, jobRequest(uploadForJob(t, svc)), "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	svc.Generator = service.NewGenerator(failingPublisher{}, "outputs")

	if err := svc.ProcessJob(ctx, job.ID); err == nil {
		t.Fatal("expected retryable error")
	}
	got, _ := svc.GetJob(ctx, job.ID)
	if got.Status != JobFailed || got.Attempts != 1 {
		t.Fatalf("unexpected job %+v", got)
	}
}

func TestProcessJobMissingIsAcknowledged(t *testing.T) {
	svc := newTestService(t)
	if err := svc.ProcessJob(context.Background(), "ghost"); err != nil {
		t.Fatalf("expected nil for unknown job, got %v", err)
	}
}
