package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NameKey builds the canonical concatenated-name join key: first, middle and
// last joined, lowercased, with all whitespace removed. A missing middle name
// contributes nothing.
func NameKey(first, middle, last string) string {
	joined := strings.Join([]string{first, middle, last}, " ")
	return strings.ToLower(strings.Join(strings.Fields(joined), ""))
}

// MiddleInitial returns the uppercased first letter of a middle name, or ""
// when the name is blank.
func MiddleInitial(middle string) string {
	s := strings.TrimSpace(middle)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}

// CompactName removes hyphens and spaces and lowercases, so "Mary-Ann" and
// "MARY ANN" compare equal as substrings of a listed name.
func CompactName(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToLower(s)
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
