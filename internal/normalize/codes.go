package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeCode trims whitespace, uppercases, and strips non-alphanumeric
// characters from a taxonomy code. Returns "" when nothing is left.
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}
