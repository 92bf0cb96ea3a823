package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/report_v1.txt
var reportPromptV1 string

// PromptVersion identifies the analysis prompt template in logs.
const PromptVersion = "report_v1"

var languageNames = map[string]string{
	"en": "English",
	"fi": "Finnish",
}

// ReportPrompt renders the analysis instructions for a template type and
// language code. Unknown codes fall back to English.
func ReportPrompt(templateType, language string) string {
	name, ok := languageNames[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		name = languageNames["en"]
	}
	if strings.TrimSpace(templateType) == "" {
		templateType = "testing"
	}
	return strings.NewReplacer(
		"{{TEMPLATE_TYPE}}", templateType,
		"{{LANGUAGE_NAME}}", name,
	).Replace(reportPromptV1)
}
