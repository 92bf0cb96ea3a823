package extract

import (
	"fmt"
	"strings"

	"reportai-backend/report/render"
)

// SectionOrderError reports a heading missing from, or out of order in, a
// rendered report.
type SectionOrderError struct {
	Heading string
	After   string
}

func (e *SectionOrderError) Error() string {
	if e.After == "" {
		return fmt.Sprintf("section %q not found", e.Heading)
	}
	return fmt.Sprintf("section %q not found after %q", e.Heading, e.After)
}

// VerifySectionOrder checks that every report heading appears in text in
// emission order. Whitespace is ignored so wrapped PDF lines still match.
func VerifySectionOrder(text string) error {
	return VerifyInOrder(text, render.SectionHeadings...)
}

// VerifyInOrder checks that parts appear in text in the given order.
func VerifyInOrder(text string, parts ...string) error {
	haystack := squash(text)
	pos := 0
	prev := ""
	for _, part := range parts {
		needle := squash(part)
		idx := strings.Index(haystack[pos:], needle)
		if idx < 0 {
			return &SectionOrderError{Heading: part, After: prev}
		}
		pos += idx + len(needle)
		prev = part
	}
	return nil
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
