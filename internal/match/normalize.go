package match

import (
	"strings"
	"unicode"
)

// NormalizeName normalizes a column name for fuzzy matching: camel case is
// split into tokens, everything is lower-cased and separators (_, -, space,
// .) are removed. "PersonID", "person_id" and "Person Id" all normalize to
// "personid".
func NormalizeName(s string) string {
	return strings.Join(Tokenize(s), "")
}

// Tokenize splits a column name into lower-case tokens on separators and
// camel-case boundaries. "visitStartDATE_time" -> [visit start date time].
func Tokenize(s string) []string {
	var (
		tokens  []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports a camel-case boundary before runes[i]: lower to
// upper ("personId") or the last upper of an acronym ("IDValue").
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
