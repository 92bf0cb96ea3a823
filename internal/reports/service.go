package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"reportai-backend/internal/analysis"
	"reportai-backend/internal/dataset"
	"reportai-backend/internal/queue"
	"reportai-backend/internal/shared/metrics"
	"reportai-backend/internal/shared/storage/object"
	"reportai-backend/internal/shared/telemetry"
	"reportai-backend/internal/shared/util"
	"reportai-backend/report/model"
	"reportai-backend/report/render"
	"reportai-backend/report/service"
)

const (
	DefaultUploadPrefix   = "uploads"
	DefaultMaxUploadBytes = 10 << 20

	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeBin  = "application/octet-stream"
)

// Service coordinates uploads, analysis and report generation.
type Service struct {
	Store          object.ObjectStore
	Repo           Repo
	Analyzer       *analysis.Analyzer
	Generator      *service.Generator
	Queue          queue.Client
	UploadPrefix   string
	MaxUploadBytes int64
	Now            func() time.Time
}

// GenerateRequest carries the form values of a generate or preview call.
type GenerateRequest struct {
	FileID       string `json:"file_id"`
	TemplateType string `json:"template_type,omitempty"`
	Title        string `json:"report_title"`
	Date         string `json:"report_date"`
	Company      string `json:"company_name,omitempty"`
	Author       string `json:"author_name,omitempty"`
	Format       string `json:"output_format"`
	Language     string `json:"language,omitempty"`
}

// Upload parses, stores and records a dataset file.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Upload, dataset.Preview, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Upload{}, dataset.Preview{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	kind, err := dataset.DetectKind(fileName)
	if err != nil {
		return Upload{}, dataset.Preview{}, err
	}
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Upload{}, dataset.Preview{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	limit := s.maxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Upload{}, dataset.Preview{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return Upload{}, dataset.Preview{}, ErrTooLarge
	}

	parsed, err := dataset.Parse(fileName, bytes.NewReader(data))
	if err != nil {
		return Upload{}, dataset.Preview{}, err
	}

	id := uuid.NewString()
	key := path.Join(s.uploadPrefix(), id+"_"+sanitized)
	size, err := s.Store.SaveWithKey(ctx, key, uploadContentType(kind), bytes.NewReader(data))
	if err != nil {
		return Upload{}, dataset.Preview{}, fmt.Errorf("store upload: %w", err)
	}

	up := Upload{
		ID:           id,
		OriginalName: fileName,
		StorageKey:   key,
		SizeBytes:    size,
		RowCount:     parsed.Dataset.NumRows(),
		ColumnCount:  parsed.Dataset.NumCols(),
		CreatedAt:    s.now(),
	}
	if err := s.Repo.CreateUpload(ctx, up); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Upload{}, dataset.Preview{}, err
	}

	metrics.IncUpload()
	telemetry.Info("upload_stored", map[string]any{
		"file_id":    id,
		"file_name":  fileName,
		"size_bytes": size,
		"rows":       up.RowCount,
		"columns":    up.ColumnCount,
	})
	return up, dataset.NewPreview(parsed, dataset.DefaultPreviewRows), nil
}

// LoadDataset reads and parses a previously uploaded file.
func (s *Service) LoadDataset(ctx context.Context, fileID string) (Upload, model.Dataset, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return Upload{}, model.Dataset{}, fmt.Errorf("%w: file_id is required", ErrInvalidInput)
	}
	up, err := s.Repo.GetUpload(ctx, fileID)
	if err != nil {
		return Upload{}, model.Dataset{}, err
	}
	rc, err := s.Store.Open(ctx, up.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Upload{}, model.Dataset{}, ErrNotFound
		}
		return Upload{}, model.Dataset{}, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	parsed, err := dataset.Parse(up.OriginalName, rc)
	if err != nil {
		return Upload{}, model.Dataset{}, err
	}
	return up, parsed.Dataset, nil
}

// Analyze runs the analysis collaborator over an uploaded dataset.
func (s *Service) Analyze(ctx context.Context, fileID, templateType, language string) (model.AnalysisResult, error) {
	lang, err := model.ParseLanguage(language)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	_, ds, err := s.LoadDataset(ctx, fileID)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return s.Analyzer.Analyze(ctx, analysis.Summarize(ds), strings.TrimSpace(templateType), lang), nil
}

// Generate analyses the dataset, renders the report and records the artifact.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Record, error) {
	if _, err := render.ParseFormat(req.Format); err != nil {
		return Record{}, err
	}
	m, ds, err := s.buildModel(ctx, req)
	if err != nil {
		return Record{}, err
	}

	art, err := s.Generator.Generate(ctx, ds, m, req.Format)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:          art.ID,
		FileID:      strings.TrimSpace(req.FileID),
		Title:       m.Title,
		Format:      string(art.Format),
		Language:    string(m.Language),
		FileName:    art.FileName,
		StorageKey:  art.StorageKey,
		ContentType: art.ContentType,
		SizeBytes:   art.SizeBytes,
		Checksum:    art.Checksum,
		CreatedAt:   art.CreatedAt.UTC(),
	}
	if err := s.Repo.CreateRecord(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("record artifact: %w", err)
	}
	return rec, nil
}

// Preview returns the document operations a report would be rendered from.
func (s *Service) Preview(ctx context.Context, req GenerateRequest) ([]render.Op, error) {
	m, ds, err := s.buildModel(ctx, req)
	if err != nil {
		return nil, err
	}
	return render.Outline(m, ds, s.now()), nil
}

func (s *Service) buildModel(ctx context.Context, req GenerateRequest) (model.ReportModel, model.Dataset, error) {
	lang, err := model.ParseLanguage(req.Language)
	if err != nil {
		return model.ReportModel{}, model.Dataset{}, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return model.ReportModel{}, model.Dataset{}, &model.ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(req.Date) == "" {
		return model.ReportModel{}, model.Dataset{}, &model.ValidationError{Field: "date", Message: "date is required"}
	}

	_, ds, err := s.LoadDataset(ctx, req.FileID)
	if err != nil {
		return model.ReportModel{}, model.Dataset{}, err
	}
	templateType := strings.TrimSpace(req.TemplateType)
	result := s.Analyzer.Analyze(ctx, analysis.Summarize(ds), templateType, lang)

	m, err := model.NewReportModel(model.ReportInput{
		Title:        req.Title,
		Date:         req.Date,
		Company:      req.Company,
		Author:       req.Author,
		TemplateType: templateType,
		Language:     string(lang),
		Analysis:     result,
	})
	if err != nil {
		return model.ReportModel{}, model.Dataset{}, err
	}
	return m, ds, nil
}

// Download opens a published artifact by file name. Artifacts without a
// record are looked up directly under the output prefix.
func (s *Service) Download(ctx context.Context, fileName string) (Record, io.ReadCloser, error) {
	if !validArtifactName(fileName) {
		return Record{}, nil, fmt.Errorf("%w: invalid file name", ErrInvalidInput)
	}
	rec, err := s.Repo.GetRecordByFileName(ctx, fileName)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Record{}, nil, err
		}
		rec = Record{
			FileName:    fileName,
			StorageKey:  s.Generator.OutputKey(fileName),
			ContentType: contentTypeBin,
		}
	}
	rc, err := s.Store.Open(ctx, rec.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Record{}, nil, ErrNotFound
		}
		return Record{}, nil, err
	}
	return rec, rc, nil
}

// Cleanup removes an uploaded file and its record. Unknown ids are a no-op.
func (s *Service) Cleanup(ctx context.Context, fileID string) error {
	up, err := s.Repo.GetUpload(ctx, strings.TrimSpace(fileID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.Store.Delete(ctx, up.StorageKey); err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("delete upload: %w", err)
	}
	if err := s.Repo.DeleteUpload(ctx, up.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	telemetry.Info("upload_deleted", map[string]any{"file_id": up.ID})
	return nil
}

// List returns recorded artifacts newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.Repo.ListRecords(ctx, limit, offset)
}

func validArtifactName(name string) bool {
	if strings.TrimSpace(name) == "" || name != strings.TrimSpace(name) {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

func uploadContentType(kind dataset.Kind) string {
	switch kind {
	case dataset.KindCSV:
		return contentTypeCSV
	case dataset.KindXLSX:
		return contentTypeXLSX
	default:
		return contentTypeBin
	}
}

func (s *Service) uploadPrefix() string {
	if p := strings.Trim(s.UploadPrefix, "/"); p != "" {
		return p
	}
	return DefaultUploadPrefix
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
