package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for dataset analysis.
type Client interface {
	AnalyzeDataset(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
}

// AnalyzeInput captures the inputs needed for a report analysis.
type AnalyzeInput struct {
	// Summary is the JSON-encoded dataset summary sent to the model.
	Summary      json.RawMessage
	TemplateType string
	Language     string
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is used when no provider credentials are configured.
type PlaceholderClient struct{}

// AnalyzeDataset returns ErrNotConfigured.
func (PlaceholderClient) AnalyzeDataset(ctx context.Context, input AnalyzeInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
