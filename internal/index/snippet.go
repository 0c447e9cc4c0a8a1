package index

import (
	"strings"
	"unicode/utf8"
)

// Snippet builds a one-line preview of text within roughly maxChars characters.
//
// Blank lines and lines starting with '/', '#' or '*' (comment markers) are
// skipped. Remaining lines are trimmed and joined with single spaces until the
// budget is exceeded; an over-long result is cut to maxChars and suffixed with
// "...". Text without a qualifying line falls back to its first maxChars
// characters. Lengths count characters, not bytes.
func Snippet(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	var parts []string
	total := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.ContainsRune("/#*", rune(trimmed[0])) {
			continue
		}
		parts = append(parts, trimmed)
		total += utf8.RuneCountInString(trimmed)
		if total > maxChars {
			break
		}
	}

	snippet := strings.Join(parts, " ")
	if snippet == "" {
		return truncateRunes(text, maxChars)
	}
	if utf8.RuneCountInString(snippet) > maxChars {
		return truncateRunes(snippet, maxChars) + "..."
	}
	return snippet
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
