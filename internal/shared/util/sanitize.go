package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Byte limits leave room for key prefixes and suffixes under the common
// 255-byte file name limit.
const (
	MaxStemBytes     = 100
	MaxFileNameBytes = 120
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > MaxFileNameBytes {
		ext := path.Ext(s)
		if len(ext) > 16 {
			ext = ""
		}
		s = truncateUTF8(strings.TrimSuffix(s, ext), MaxFileNameBytes-len(ext)) + ext
	}
	return s, nil
}

// FileStem turns a free-form title into a filesystem-safe stem. Spaces and
// path separators become underscores; anything outside letters, digits,
// '-', '_' and '.' is dropped. The stem is capped at MaxStemBytes and an
// empty result falls back to def.
func FileStem(title, def string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r == ' ' || r == '/' || r == '\\':
			b.WriteByte('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	stem := strings.Trim(truncateUTF8(b.String(), MaxStemBytes), ".")
	if stem == "" || strings.Trim(stem, "_") == "" {
		return def
	}
	return stem
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
