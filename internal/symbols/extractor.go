package symbols

import (
	"strings"
	"unicode/utf8"

	"github.com/Aman-CERP/codesift/internal/scanner"
)

// Extractor runs a pattern table over raw text.
type Extractor struct {
	patterns []Pattern
}

// NewExtractor creates an extractor with the default pattern table.
func NewExtractor() *Extractor {
	return &Extractor{patterns: DefaultPatterns}
}

// NewExtractorWithPatterns creates an extractor with a custom pattern table.
func NewExtractorWithPatterns(patterns []Pattern) *Extractor {
	return &Extractor{patterns: patterns}
}

// Analyze extracts symbols from content and counts its lines and characters.
// path is an optional hint used only to report the detected language.
func (e *Extractor) Analyze(content, path string) Result {
	collected := make(map[Category][]string, len(Categories))
	for _, p := range e.patterns {
		for _, m := range p.Regexp.FindAllStringSubmatch(content, -1) {
			if len(m) > 1 {
				collected[p.Category] = append(collected[p.Category], m[1])
			}
		}
	}

	var buckets Buckets
	for _, c := range Categories {
		buckets.set(c, dedupe(collected[c]))
	}

	result := Result{
		Symbols:   buckets,
		LineCount: strings.Count(content, "\n") + 1,
		CharCount: utf8.RuneCountInString(content),
	}
	if path != "" {
		result.Language = scanner.DetectLanguage(path)
	}
	return result
}

// dedupe removes repeats while keeping first-occurrence order. Never returns nil.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return unique
}
