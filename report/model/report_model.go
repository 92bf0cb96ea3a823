package model

import (
	"fmt"
	"strings"
)

// DefaultTemplateType is used when the caller does not name a template.
const DefaultTemplateType = "testing"

// Language selects the language of the generated analysis text.
type Language string

const (
	LanguageEN Language = "en"
	LanguageFI Language = "fi"
)

// ParseLanguage normalizes a language token. Empty input maps to English.
func ParseLanguage(raw string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "en":
		return LanguageEN, nil
	case "fi":
		return LanguageFI, nil
	default:
		return "", &ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", raw)}
	}
}

// AnalysisResult is the narrative produced for a dataset.
type AnalysisResult struct {
	ExecutiveSummary    string   `json:"executive_summary"`
	KeyFindings         []string `json:"key_findings"`
	StatisticalAnalysis string   `json:"statistical_analysis"`
	Recommendations     []string `json:"recommendations"`
	Conclusion          string   `json:"conclusion"`
}

// ReportModel is the canonical, validated input to every renderer.
type ReportModel struct {
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Company      string         `json:"company,omitempty"`
	Author       string         `json:"author,omitempty"`
	TemplateType string         `json:"template_type"`
	Language     Language       `json:"language"`
	Analysis     AnalysisResult `json:"analysis"`
}

// ReportInput carries raw caller values before validation.
type ReportInput struct {
	Title        string
	Date         string
	Company      string
	Author       string
	TemplateType string
	Language     string
	Analysis     AnalysisResult
}

// NewReportModel trims and validates the input and applies defaults.
func NewReportModel(in ReportInput) (ReportModel, error) {
	lang, err := ParseLanguage(in.Language)
	if err != nil {
		return ReportModel{}, err
	}
	m := ReportModel{
		Title:        strings.TrimSpace(in.Title),
		Date:         strings.TrimSpace(in.Date),
		Company:      strings.TrimSpace(in.Company),
		Author:       strings.TrimSpace(in.Author),
		TemplateType: strings.TrimSpace(in.TemplateType),
		Language:     lang,
		Analysis:     in.Analysis,
	}
	if m.TemplateType == "" {
		m.TemplateType = DefaultTemplateType
	}
	if err := m.Validate(); err != nil {
		return ReportModel{}, err
	}
	return m, nil
}

// Validate enforces required fields on an already constructed model.
func (m ReportModel) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(m.Date) == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	switch m.Language {
	case LanguageEN, LanguageFI:
	default:
		return &ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", m.Language)}
	}
	return nil
}
