package reports

import "time"

// Upload is a stored dataset file.
type Upload struct {
	ID           string
	OriginalName string
	StorageKey   string
	SizeBytes    int64
	RowCount     int
	ColumnCount  int
	CreatedAt    time.Time
}

// Record is a published report artifact.
type Record struct {
	ID          string
	FileID      string
	Title       string
	Format      string
	Language    string
	FileName    string
	StorageKey  string
	ContentType string
	SizeBytes   int64
	Checksum    string
	CreatedAt   time.Time
}

// JobStatus is the lifecycle state of an asynchronous render job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is a report generation request processed by a worker.
type Job struct {
	ID        string
	Status    JobStatus
	Request   GenerateRequest
	RequestID string
	ReportID  string
	FileName  string
	Error     string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
