package analysis

import (
	"context"
	"encoding/json"

	"reportai-backend/internal/llm"
	"reportai-backend/internal/shared/metrics"
	"reportai-backend/internal/shared/telemetry"
	"reportai-backend/report/model"
)

// Analyzer turns a dataset summary into report narrative. It never fails:
// any provider problem yields the fallback text for the language.
type Analyzer struct {
	Client llm.Client
}

// NewAnalyzer constructs an Analyzer; a nil client always falls back.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{Client: client}
}

// Analyze asks the provider for an analysis of summary.
func (a *Analyzer) Analyze(ctx context.Context, summary Summary, templateType string, lang model.Language) model.AnalysisResult {
	if templateType == "" {
		templateType = model.DefaultTemplateType
	}
	if lang == "" {
		lang = model.LanguageEN
	}
	if a == nil || a.Client == nil {
		return a.fallback(summary, templateType, lang, "no client configured")
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return a.fallback(summary, templateType, lang, err.Error())
	}
	raw, err := a.Client.AnalyzeDataset(ctx, llm.AnalyzeInput{
		Summary:      payload,
		TemplateType: templateType,
		Language:     string(lang),
	})
	if err != nil {
		return a.fallback(summary, templateType, lang, err.Error())
	}
	result, err := ParseResult(raw)
	if err != nil {
		return a.fallback(summary, templateType, lang, err.Error())
	}
	return result
}

func (a *Analyzer) fallback(summary Summary, templateType string, lang model.Language, reason string) model.AnalysisResult {
	metrics.IncAnalysisFallback()
	telemetry.Warn("analysis_fallback", map[string]any{
		"language":      string(lang),
		"template_type": templateType,
		"rows":          summary.Rows,
		"reason":        reason,
	})
	return Fallback(summary, templateType, lang)
}
