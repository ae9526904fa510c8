// Package licensure groups state licensing records and indexes them for the
// residency and triangulation lookups.
package licensure

import (
	"strings"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/normalize"
)

// Entry is one grouped licensing record with its precomputed match keys.
type Entry struct {
	model.LicenseRecord
	CleanedLicense        string
	CleanedLicenseMinimal string
	NameKey               string
}

// Group collapses records that differ only in specialty into a single entry
// whose Specialty joins the non-blank values with ",". Entries keep the order
// in which each group first appears.
func Group(records []model.LicenseRecord) []Entry {
	pos := make(map[model.LicenseRecord]int, len(records))
	var out []Entry
	for _, r := range records {
		key := r
		key.Specialty = ""
		spec := strings.TrimSpace(r.Specialty)

		if i, ok := pos[key]; ok {
			if spec != "" {
				if out[i].Specialty == "" {
					out[i].Specialty = spec
				} else {
					out[i].Specialty += "," + spec
				}
			}
			continue
		}

		e := Entry{
			LicenseRecord:         key,
			CleanedLicense:        normalize.CleanLicense(r.LicenseNumber),
			CleanedLicenseMinimal: normalize.CleanLicenseMinimal(r.LicenseNumber),
			NameKey:               normalize.NameKey(r.FirstName, r.MiddleName, r.LastName),
		}
		e.Specialty = spec
		pos[key] = len(out)
		out = append(out, e)
	}
	return out
}

// Index holds the licensing-wide lookup sets used by the residency resolver.
type Index struct {
	firstNames map[string]struct{}
	lastNames  map[string]struct{}
	licenses   map[string]struct{}
}

// NewIndex builds the first-name, last-name and cleaned-license sets. Blank
// values are never indexed.
func NewIndex(records []model.LicenseRecord) *Index {
	ix := &Index{
		firstNames: make(map[string]struct{}),
		lastNames:  make(map[string]struct{}),
		licenses:   make(map[string]struct{}),
	}
	for _, r := range records {
		if !normalize.IsBlank(r.FirstName) {
			ix.firstNames[r.FirstName] = struct{}{}
		}
		if !normalize.IsBlank(r.LastName) {
			ix.lastNames[r.LastName] = struct{}{}
		}
		if lic := normalize.CleanLicense(r.LicenseNumber); lic != "" {
			ix.licenses[lic] = struct{}{}
		}
	}
	return ix
}

// NameMatch reports whether first appears among licensing first names and
// last among licensing last names. The two sets are independent, so the names
// need not come from the same licensing row.
func (ix *Index) NameMatch(first, last string) bool {
	if normalize.IsBlank(first) || normalize.IsBlank(last) {
		return false
	}
	_, okFirst := ix.firstNames[first]
	_, okLast := ix.lastNames[last]
	return okFirst && okLast
}

// LicenseMatch reports whether any slot's cleaned license number is a cleaned
// licensing-source license number.
func (ix *Index) LicenseMatch(slots []model.LicenseSlot) bool {
	for _, s := range slots {
		lic := normalize.CleanLicense(s.Number)
		if lic == "" {
			continue
		}
		if _, ok := ix.licenses[lic]; ok {
			return true
		}
	}
	return false
}

// Size returns the number of distinct cleaned licenses indexed.
func (ix *Index) Size() int {
	return len(ix.licenses)
}
