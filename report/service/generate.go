package service

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

	"reportai-backend/internal/shared/metrics"
	"reportai-backend/internal/shared/telemetry"
	"reportai-backend/internal/shared/util"
	"reportai-backend/report/model"
	"reportai-backend/report/render"
)

const (
	// DefaultOutputPrefix is the storage directory artifacts are published under.
	DefaultOutputPrefix = "outputs"
	defaultStem         = "report"
	fileTimeLayout      = "20060102_150405"
)

// Publisher stores finished artifact bytes at a key. Implementations must
// not expose partially written objects.
type Publisher interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

// Artifact describes one published report file.
type Artifact struct {
	ID          string        `json:"id"`
	Format      render.Format `json:"format"`
	FileName    string        `json:"file_name"`
	StorageKey  string        `json:"storage_key"`
	ContentType string        `json:"content_type"`
	Bytes       []byte        `json:"-"`
	SizeBytes   int64         `json:"size_bytes"`
	Checksum    string        `json:"checksum"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Generator renders a report in the requested format and publishes it.
type Generator struct {
	Store     Publisher
	Renderers map[render.Format]render.Renderer
	Prefix    string
	Now       func() time.Time
	NewID     func() string
}

// NewGenerator wires the default renderers and house style.
func NewGenerator(store Publisher, prefix string) *Generator {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultOutputPrefix
	}
	return &Generator{
		Store:     store,
		Renderers: render.NewRenderers(render.DefaultStyle()),
		Prefix:    prefix,
		Now:       time.Now,
		NewID:     func() string { return uuid.NewString() },
	}
}

// Generate validates inputs, renders in memory and publishes the bytes.
// Unknown format tokens fail before anything is rendered or written.
func (g *Generator) Generate(ctx context.Context, ds model.Dataset, m model.ReportModel, token string) (Artifact, error) {
	format, err := render.ParseFormat(token)
	if err != nil {
		return Artifact{}, err
	}
	if err := m.Validate(); err != nil {
		return Artifact{}, err
	}
	if err := ds.Validate(); err != nil {
		return Artifact{}, err
	}
	renderer, ok := g.Renderers[format]
	if !ok {
		return Artifact{}, &render.UnsupportedFormatError{Token: token}
	}
	if g.Store == nil {
		return Artifact{}, errors.New("artifact store is not configured")
	}

	now := g.now()
	id := g.newID()
	fileName := ArtifactFileName(m.Title, now, id, format)
	storageKey := g.OutputKey(fileName)
	fields := map[string]any{
		"format":    string(format),
		"file_name": fileName,
		"rows":      ds.NumRows(),
		"columns":   ds.NumCols(),
		"language":  string(m.Language),
	}
	telemetry.Info("render_started", fields)

	start := time.Now()
	data, err := renderer.Render(m, ds, now)
	metrics.ObserveRenderDurationMs(metrics.SinceMillis(start))
	if err != nil {
		metrics.IncRenderFailed(string(format))
		fields["error"] = err.Error()
		telemetry.Error("render_failed", fields)
		return Artifact{}, err
	}

	size, err := g.Store.SaveWithKey(ctx, storageKey, format.ContentType(), bytes.NewReader(data))
	if err != nil {
		metrics.IncRenderFailed(string(format))
		fields["error"] = err.Error()
		telemetry.Error("publish_failed", fields)
		return Artifact{}, fmt.Errorf("publish %s: %w", storageKey, err)
	}

	metrics.IncRender(string(format))
	fields["size_bytes"] = size
	fields["duration_ms"] = metrics.SinceMillis(start)
	telemetry.Info("render_completed", fields)

	return Artifact{
		ID:          id,
		Format:      format,
		FileName:    fileName,
		StorageKey:  storageKey,
		ContentType: format.ContentType(),
		Bytes:       data,
		SizeBytes:   size,
		Checksum:    util.Checksum(data),
		CreatedAt:   now,
	}, nil
}

// ArtifactFileName builds <stem>_<YYYYMMDD_HHMMSS>_<8 hex>.<ext>.
func ArtifactFileName(title string, now time.Time, id string, format render.Format) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%s_%s_%s.%s", util.FileStem(title, defaultStem), now.Format(fileTimeLayout), suffix, format.Extension())
}

// OutputKey returns the storage key an artifact file name is published at.
func (g *Generator) OutputKey(fileName string) string {
	return path.Join(g.prefix(), fileName)
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Generator) newID() string {
	if g.NewID != nil {
		return g.NewID()
	}
	return uuid.NewString()
}

func (g *Generator) prefix() string {
	if p := strings.Trim(g.Prefix, "/"); p != "" {
		return p
	}
	return DefaultOutputPrefix
}
