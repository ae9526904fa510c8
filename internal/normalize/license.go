package normalize

import "strings"

// LicensePrefixes are the credential prefixes stripped from license numbers
// before comparison.
var LicensePrefixes = []string{"MD", "DO", "LP"}

// CleanLicense strips a credential prefix and one following zero, then
// surrounding whitespace. Stripping repeats until no prefix remains so the
// result is stable under reapplication. Blank input yields "".
func CleanLicense(raw string) string {
	return stripPrefixes(raw, true)
}

// CleanLicenseMinimal strips only the bare credential prefix, keeping any
// leading zero.
func CleanLicenseMinimal(raw string) string {
	return stripPrefixes(raw, false)
}

func stripPrefixes(raw string, dropZero bool) string {
	s := strings.TrimSpace(raw)
	for {
		p := matchPrefix(s)
		if p == "" {
			return s
		}
		s = s[len(p):]
		if dropZero {
			s = strings.TrimPrefix(s, "0")
		}
		s = strings.TrimSpace(s)
	}
}

func matchPrefix(s string) string {
	for _, p := range LicensePrefixes {
		if strings.HasPrefix(s, p) {
			return p
		}
	}
	return ""
}

// CompactLicense removes every space from a license number. The licensing
// board accepts dashes but never spaces.
func CompactLicense(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
}
