package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateRecord(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := Record{
		ID:          "4b7c2a9e-0c1d-4f52-8f0e-9a7b6c5d4e3f",
		FileID:      "upload-1",
		Title:       "Quality Report",
		Format:      "pdf",
		Language:    "en",
		FileName:    "Quality_Report_20240501_143000_4b7c2a9e.pdf",
		StorageKey:  "outputs/Quality_Report_20240501_143000_4b7c2a9e.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		Checksum:    "abc123",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO report_artifacts").
		WithArgs(
			rec.ID,
			rec.FileID,
			rec.Title,
			rec.Format,
			rec.Language,
			rec.FileName,
			rec.StorageKey,
			rec.ContentType,
			rec.SizeBytes,
			rec.Checksum,
			rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateRecord(context.Background(), rec); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetRecordByFileName(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)

	columns := []string{"id", "file_id", "title", "format", "language", "file_name", "storage_key", "content_type", "size_bytes", "checksum", "created_at"}
	mock.ExpectQuery("FROM report_artifacts").
		WithArgs("a.pdf").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-1", "upload-1", "T", "pdf", "en", "a.pdf", "outputs/a.pdf", "application/pdf", int64(10), "sum", created))
	mock.ExpectQuery("FROM report_artifacts").
		WithArgs("missing.pdf").
		WillReturnRows(sqlmock.NewRows(columns))

	rec, err := repo.GetRecordByFileName(context.Background(), "a.pdf")
	if err != nil {
		t.Fatalf("GetRecordByFileName: %v", err)
	}
	if rec.StorageKey != "outputs/a.pdf" || rec.SizeBytes != 10 || !rec.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record %+v", rec)
	}

	_, err = repo.GetRecordByFileName(context.Background(), "missing.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListRecordsClampsPage(t *testing.T) {
	repo, mock := newMockRepo(t)
	columns := []string{"id", "file_id", "title", "format", "language", "file_name", "storage_key", "content_type", "size_bytes", "checksum", "created_at"}
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(maxListLimit, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-2", "u", "T", "excel", "fi", "b.xlsx", "outputs/b.xlsx", "x", int64(5), "s", time.Now()).
			AddRow("id-1", "u", "T", "pdf", "en", "a.pdf", "outputs/a.pdf", "y", int64(4), "s", time.Now()))

	recs, err := repo.ListRecords(context.Background(), 500, -3)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(recs) != 2 || recs[0].FileName != "b.xlsx" {
		t.Fatalf("unexpected records %+v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUploadLifecycle(t *testing.T) {
	repo, mock := newMockRepo(t)
	up := Upload{
		ID:           "upload-1",
		OriginalName: "data.csv",
		StorageKey:   "uploads/upload-1_data.csv",
		SizeBytes:    42,
		RowCount:     3,
		ColumnCount:  2,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO uploads").
		WithArgs(up.ID, up.OriginalName, up.StorageKey, up.SizeBytes, up.RowCount, up.ColumnCount, up.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM uploads").
		WithArgs(up.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM uploads").
		WithArgs(up.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.CreateUpload(context.Background(), up); err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}
	if err := repo.DeleteUpload(context.Background(), up.ID); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}
	if err := repo.DeleteUpload(context.Background(), up.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoJobLifecycle(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, time.May, 1, 14, 30, 0, 0, time.UTC)
	job := Job{
		ID:        "job-1",
		Status:    JobQueued,
		Request:   GenerateRequest{FileID: "upload-1", Title: "Quality Report", Date: "2024-05-01", Format: "pdf"},
		RequestID: "req-1",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO render_jobs").
		WithArgs(job.ID, "queued", sqlmock.AnyArg(), "req-1", "", "", "", 0, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rows := sqlmock.NewRows([]string{
		"id", "status", "request", "request_id", "report_id", "file_name", "error", "attempts", "created_at", "updated_at",
	}).AddRow(
		job.ID, "succeeded",
		[]byte(`{"file_id":"upload-1","report_title":"Quality Report","report_date":"2024-05-01","output_format":"pdf"}`),
		"req-1", "rec-1", "Quality_Report.pdf", "", 1, now, now,
	)
	mock.ExpectQuery("SELECT id, status, request").WithArgs(job.ID).WillReturnRows(rows)

	if err := repo.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	got, err := repo.GetJob(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != JobSucceeded || got.Request != job.Request || got.FileName != "Quality_Report.pdf" || got.Attempts != 1 {
		t.Fatalf("unexpected job %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoJobNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, status, request").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("UPDATE render_jobs").
		WithArgs("missing", "failed", "", "", "boom", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.GetJob(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err := repo.UpdateJob(context.Background(), Job{ID: "missing", Status: JobFailed, Error: "boom", Attempts: 1, UpdatedAt: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
