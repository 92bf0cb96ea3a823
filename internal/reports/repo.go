package reports

import "context"

// Repo defines persistence for uploads, report artifacts and render jobs.
type Repo interface {
	CreateUpload(ctx context.Context, up Upload) error
	GetUpload(ctx context.Context, id string) (Upload, error)
	DeleteUpload(ctx context.Context, id string) error
	CreateRecord(ctx context.Context, rec Record) error
	GetRecordByFileName(ctx context.Context, fileName string) (Record, error)
	ListRecords(ctx context.Context, limit, offset int) ([]Record, error)
	CreateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	UpdateJob(ctx context.Context, job Job) error
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
