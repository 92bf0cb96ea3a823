package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"reportai-backend/report/model"
)

// ErrEmptyResult marks a provider answer with no usable section.
var ErrEmptyResult = errors.New("analysis result is empty")

type rawResult struct {
	ExecutiveSummary    json.RawMessage `json:"executive_summary"`
	KeyFindings         json.RawMessage `json:"key_findings"`
	StatisticalAnalysis json.RawMessage `json:"statistical_analysis"`
	Recommendations     json.RawMessage `json:"recommendations"`
	Conclusion          json.RawMessage `json:"conclusion"`
}

// ParseResult decodes a provider answer. Text sections accept strings;
// list sections accept an array of strings or a single string;
// statistical_analysis may also be an object, which is flattened.
func ParseResult(raw []byte) (model.AnalysisResult, error) {
	var r rawResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("decode analysis: %w", err)
	}

	var out model.AnalysisResult
	var err error
	if out.ExecutiveSummary, err = textField(r.ExecutiveSummary); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("executive_summary: %w", err)
	}
	if out.KeyFindings, err = listField(r.KeyFindings); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("key_findings: %w", err)
	}
	if out.StatisticalAnalysis, err = textField(r.StatisticalAnalysis); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("statistical_analysis: %w", err)
	}
	if out.Recommendations, err = listField(r.Recommendations); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("recommendations: %w", err)
	}
	if out.Conclusion, err = textField(r.Conclusion); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("conclusion: %w", err)
	}

	if out.ExecutiveSummary == "" && len(out.KeyFindings) == 0 && out.StatisticalAnalysis == "" &&
		len(out.Recommendations) == 0 && out.Conclusion == "" {
		return model.AnalysisResult{}, ErrEmptyResult
	}
	return out, nil
}

func textField(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case map[string]any:
		return FlattenStatistics(t), nil
	case float64, bool:
		return scalarText(t), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}

func listField(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s := strings.TrimSpace(scalarText(item))
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}
}

// FlattenStatistics renders a metrics object as "key: value" lines sorted
// by key.
func FlattenStatistics(stats map[string]any) string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+scalarText(stats[k]))
	}
	return strings.Join(lines, "\n")
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return "N/A"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
