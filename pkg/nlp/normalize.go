package nlp

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// Normalize приводит текст к упрощённому виду для сравнения:
// нижний регистр, не-буквенно-цифровые символы заменены пробелами, пробелы схлопнуты.
// "+" и "#" сохраняются, чтобы "C++" и "C#" не превращались в "c".
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsPhrase reports whether normalized phrase occurs in normalized text
// as whole words: "rest api" matches "... rest api ..." but not "rest apis".
func ContainsPhrase(normalizedText, normalizedPhrase string) bool {
	if normalizedPhrase == "" {
		return false
	}
	hay := " " + normalizedText + " "
	needle := " " + normalizedPhrase + " "
	return strings.Contains(hay, needle)
}

// MatchesAny reports whether query matches any of fields after normalization.
// An empty query matches everything.
func MatchesAny(query string, fields ...string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if ContainsPhrase(Normalize(f), q) {
			return true
		}
	}
	return false
}
