package normalize

import (
	"strings"
	"time"
)

// Date formats seen in licensing extracts and lookup results.
var dateFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"01-02-2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ISODate rewrites a parseable date as YYYY-MM-DD and returns anything else
// trimmed but otherwise unchanged.
func ISODate(s string) string {
	if t := ParseDate(s); t != nil {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}
