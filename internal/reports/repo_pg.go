package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateUpload inserts an upload row.
func (r *PGRepo) CreateUpload(ctx context.Context, up Upload) error {
	const query = `
INSERT INTO uploads (
    id,
    original_name,
    storage_key,
    size_bytes,
    row_count,
    column_count,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		up.ID,
		up.OriginalName,
		up.StorageKey,
		up.SizeBytes,
		up.RowCount,
		up.ColumnCount,
		up.CreatedAt,
	)
	return err
}

// GetUpload fetches an upload by ID.
func (r *PGRepo) GetUpload(ctx context.Context, id string) (Upload, error) {
	const query = `
SELECT id, original_name, storage_key, size_bytes, row_count, column_count, created_at
FROM uploads
WHERE id = $1`
	var up Upload
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&up.ID,
		&up.OriginalName,
		&up.StorageKey,
		&up.SizeBytes,
		&up.RowCount,
		&up.ColumnCount,
		&up.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Upload{}, ErrNotFound
		}
		return Upload{}, err
	}
	return up, nil
}

// DeleteUpload removes an upload row.
func (r *PGRepo) DeleteUpload(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRecord inserts a published artifact.
func (r *PGRepo) CreateRecord(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO report_artifacts (
    id,
    file_id,
    title,
    format,
    language,
    file_name,
    storage_key,
    content_type,
    size_bytes,
    checksum,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
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
	)
	return err
}

const recordColumns = `id, file_id, title, format, language, file_name, storage_key, content_type, size_bytes, checksum, created_at`

// GetRecordByFileName fetches an artifact by its published file name.
func (r *PGRepo) GetRecordByFileName(ctx context.Context, fileName string) (Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM report_artifacts
WHERE file_name = $1
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, fileName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListRecords lists artifacts newest first.
func (r *PGRepo) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	limit, offset = clampPage(limit, offset)
	query := `
SELECT ` + recordColumns + `
FROM report_artifacts
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.FileID,
		&rec.Title,
		&rec.Format,
		&rec.Language,
		&rec.FileName,
		&rec.StorageKey,
		&rec.ContentType,
		&rec.SizeBytes,
		&rec.Checksum,
		&rec.CreatedAt,
	)
	return rec, err
}

// CreateJob inserts a queued render job.
func (r *PGRepo) CreateJob(ctx context.Context, job Job) error {
	request, err := json.Marshal(job.Request)
	if err != nil {
		return fmt.Errorf("encode job request: %w", err)
	}
	const query = `
INSERT INTO render_jobs (
    id,
    status,
    request,
    request_id,
    report_id,
    file_name,
    error,
    attempts,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		string(job.Status),
		request,
		job.RequestID,
		job.ReportID,
		job.FileName,
		job.Error,
		job.Attempts,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetJob fetches a render job by ID.
func (r *PGRepo) GetJob(ctx context.Context, id string) (Job, error) {
	const query = `
SELECT id, status, request, request_id, report_id, file_name, error, attempts, created_at, updated_at
FROM render_jobs
WHERE id = $1`
	var (
		job     Job
		status  string
		request []byte
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&status,
		&request,
		&job.RequestID,
		&job.ReportID,
		&job.FileName,
		&job.Error,
		&job.Attempts,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	job.Status = JobStatus(status)
	if err := json.Unmarshal(request, &job.Request); err != nil {
		return Job{}, fmt.Errorf("decode job request: %w", err)
	}
	return job, nil
}

// UpdateJob writes the mutable job fields.
func (r *PGRepo) UpdateJob(ctx context.Context, job Job) error {
	const query = `
UPDATE render_jobs
SET status = $2,
    report_id = $3,
    file_name = $4,
    error = $5,
    attempts = $6,
    updated_at = $7
WHERE id = $1`

	res, err := r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		string(job.Status),
		job.ReportID,
		job.FileName,
		job.Error,
		job.Attempts,
		job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
