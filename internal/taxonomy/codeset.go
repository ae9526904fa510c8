package taxonomy

import "github.com/gyeh/pcroster/internal/normalize"

// CodeSet is a set of normalized taxonomy codes.
type CodeSet map[string]struct{}

// NewCodeSet normalizes codes into a set, skipping blanks.
func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		if n := normalize.NormalizeCode(c); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Matches returns the slot codes found in the set, in slot order.
func (s CodeSet) Matches(codes []string) []string {
	var out []string
	for _, c := range codes {
		if _, ok := s[normalize.NormalizeCode(c)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Any reports whether any slot code is in the set.
func (s CodeSet) Any(codes []string) bool {
	for _, c := range codes {
		if _, ok := s[normalize.NormalizeCode(c)]; ok {
			return true
		}
	}
	return false
}
