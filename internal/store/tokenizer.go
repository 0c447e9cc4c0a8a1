package store

import (
	"strings"
	"unicode"
)

// isWordRune reports whether r belongs to a token: letters, numbers of any
// kind (so superscripts and fractions too) and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize lowercases text and returns the maximal runs of word characters in order.
// All other characters are separators. Empty or non-matching input yields an empty slice.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })
	tokens := make([]string, len(words))
	for i, w := range words {
		tokens[i] = strings.ToLower(w)
	}
	return tokens
}

// Analyzer turns text into index terms.
// With SplitIdentifiers disabled it produces exactly the Tokenize sequence.
type Analyzer struct {
	// SplitIdentifiers additionally emits the parts of snake_case and camelCase
	// tokens right after the whole token, so "parse_token" also yields "parse" and "token".
	SplitIdentifiers bool
}

// Terms returns the analyzed term sequence for text.
func (a Analyzer) Terms(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) })
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, strings.ToLower(w))
		if !a.SplitIdentifiers {
			continue
		}
		parts := SplitCodeToken(w)
		if len(parts) < 2 {
			continue
		}
		for _, p := range parts {
			terms = append(terms, strings.ToLower(p))
		}
	}
	return terms
}

// TermFrequencies counts occurrences of each term.
func TermFrequencies(terms []string) map[string]int {
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf
}

// SplitCodeToken splits camelCase and snake_case identifiers.
func SplitCodeToken(token string) []string {
	var result []string

	if strings.Contains(token, "_") {
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, SplitCamelCase(part)...)
			}
		}
		return result
	}

	return SplitCamelCase(token)
}

// SplitCamelCase splits camelCase and PascalCase identifiers.
// Examples:
//   - "getUserById" -> ["get", "User", "By", "Id"]
//   - "HTTPHandler" -> ["HTTP", "Handler"]
//   - "parseHTTPRequest" -> ["parse", "HTTP", "Request"]
func SplitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Split if previous is lowercase OR next is lowercase (handles acronyms)
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}
