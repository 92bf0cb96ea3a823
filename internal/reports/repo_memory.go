package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	uploads map[string]Upload
	records map[string]Record // file name -> record
	jobs    map[string]Job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		uploads: make(map[string]Upload),
		records: make(map[string]Record),
		jobs:    make(map[string]Job),
	}
}

func (r *MemoryRepo) CreateUpload(ctx context.Context, up Upload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[up.ID] = up
	return nil
}

func (r *MemoryRepo) GetUpload(ctx context.Context, id string) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	up, ok := r.uploads[id]
	if !ok {
		return Upload{}, ErrNotFound
	}
	return up, nil
}

func (r *MemoryRepo) DeleteUpload(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[id]; !ok {
		return ErrNotFound
	}
	delete(r.uploads, id)
	return nil
}

func (r *MemoryRepo) CreateRecord(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.FileName]; exists {
		return ErrInvalidInput
	}
	r.records[rec.FileName] = rec
	return nil
}

func (r *MemoryRepo) GetRecordByFileName(ctx context.Context, fileName string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[fileName]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ListRecords returns records newest first, honoring limit/offset.
func (r *MemoryRepo) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	r.mu.RLock()
	recs := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].FileName > recs[j].FileName
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if offset >= len(recs) {
		return []Record{}, nil
	}
	end := len(recs)
	if offset+limit < end {
		end = offset + limit
	}
	return recs[offset:end], nil
}

func (r *MemoryRepo) CreateJob(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return ErrInvalidInput
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetJob(ctx context.Context, id string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) UpdateJob(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	r.jobs[job.ID] = job
	return nil
}
