package openai

import (
	"fmt"

	"reportai-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const systemPrompt = "You are a quality report analysis engine. Respond with JSON only. Output must match the schema exactly."

// BuildPrompt creates the chat messages for a dataset analysis request.
func BuildPrompt(input llm.AnalyzeInput) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: llm.ReportPrompt(input.TemplateType, input.Language)},
		{Role: "user", Content: buildUserPrompt(input)},
	}
}

func buildUserPrompt(input llm.AnalyzeInput) string {
	summary := string(input.Summary)
	if summary == "" {
		summary = "{}"
	}
	return fmt.Sprintf("Dataset summary (JSON):\n%s", summary)
}
