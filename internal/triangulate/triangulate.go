// Package triangulate confirms the licensing record that belongs to a linked
// provider.
package triangulate

import (
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/licensure"
	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/normalize"
)

type nameKey struct {
	first, last, credential string
}

type concatKey struct {
	name, credential string
}

// Index looks up licensing entries by name and credential.
type Index struct {
	entries  []licensure.Entry
	byName   map[nameKey][]int
	byConcat map[concatKey][]int
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewIndex indexes grouped licensing entries. Entries without a credential are
// not indexed since their role is unknown.
func NewIndex(entries []licensure.Entry) *Index {
	ix := &Index{
		entries:  entries,
		byName:   make(map[nameKey][]int),
		byConcat: make(map[concatKey][]int),
	}
	for i, e := range entries {
		cred := fold(e.Credential)
		if cred == "" {
			continue
		}
		if first, last := fold(e.FirstName), fold(e.LastName); first != "" && last != "" {
			k := nameKey{first, last, cred}
			ix.byName[k] = append(ix.byName[k], i)
		}
		if e.NameKey != "" {
			k := concatKey{e.NameKey, cred}
			ix.byConcat[k] = append(ix.byConcat[k], i)
		}
	}
	return ix
}

// Outcome is the triangulation result for one provider.
type Outcome struct {
	License   string
	Specialty string
	Status    string
}

func unconfirmed(status string) Outcome {
	return Outcome{License: model.Unconfirmed, Specialty: model.Unconfirmed, Status: status}
}

// CleanedLicenses returns the full-clean form of every non-empty license slot.
func CleanedLicenses(slots []model.LicenseSlot) []string {
	var out []string
	for _, s := range slots {
		if c := normalize.CleanLicense(s.Number); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Candidates returns the licensing entries that match the provider on first
// name, last name and role. When several match and the provider has a middle
// name, they are narrowed by middle initial. When none match, the
// concatenated-name key is tried instead.
func (ix *Index) Candidates(p *model.LinkedProvider) []licensure.Entry {
	cred := fold(p.Role)
	if cred == "" {
		return nil
	}
	reg := &p.Registry

	var idx []int
	if first, last := fold(reg.FirstName), fold(reg.LastName); first != "" && last != "" {
		idx = ix.byName[nameKey{first, last, cred}]
	}
	if len(idx) > 1 {
		if mi := normalize.MiddleInitial(reg.MiddleName); mi != "" {
			var narrowed []int
			for _, i := range idx {
				if normalize.MiddleInitial(ix.entries[i].MiddleName) == mi {
					narrowed = append(narrowed, i)
				}
			}
			idx = narrowed
		}
	}
	if len(idx) == 0 {
		if key := normalize.NameKey(reg.FirstName, reg.MiddleName, reg.LastName); key != "" {
			idx = ix.byConcat[concatKey{key, cred}]
		}
	}

	out := make([]licensure.Entry, len(idx))
	for j, i := range idx {
		out[j] = ix.entries[i]
	}
	return out
}

// Confirm triangulates one provider. A license is confirmed only when exactly
// one candidate remains and its full-clean or minimal-clean license number is
// among the provider's cleaned licenses; anything else yields the Unconfirmed
// sentinel with the reason in Status.
func (ix *Index) Confirm(p *model.LinkedProvider) Outcome {
	cands := ix.Candidates(p)
	switch {
	case len(cands) == 0:
		return unconfirmed(model.ConfirmationNoCandidate)
	case len(cands) > 1:
		return unconfirmed(model.ConfirmationAmbiguous)
	}

	c := cands[0]
	cleaned := p.CleanedLicenses
	if cleaned == nil {
		cleaned = CleanedLicenses(p.Registry.Licenses)
	}
	for _, lic := range []string{c.CleanedLicense, c.CleanedLicenseMinimal} {
		if lic != "" && slices.Contains(cleaned, lic) {
			return Outcome{License: c.LicenseNumber, Specialty: c.Specialty, Status: model.ConfirmationConfirmed}
		}
	}
	return unconfirmed(model.ConfirmationLicenseMismatch)
}

// Result summarizes a triangulation pass.
type Result struct {
	ByStatus map[string]int
	Duration time.Duration
}

// ConfirmAll fills the cleaned-license and confirmation fields of every
// roster row in place.
func (ix *Index) ConfirmAll(log zerolog.Logger, roster []model.LinkedProvider) *Result {
	start := time.Now()
	res := &Result{ByStatus: make(map[string]int)}
	for i := range roster {
		p := &roster[i]
		p.CleanedLicenses = CleanedLicenses(p.Registry.Licenses)
		o := ix.Confirm(p)
		p.ConfirmedLicense = o.License
		p.ConfirmedSpecialty = o.Specialty
		p.ConfirmationStatus = o.Status
		res.ByStatus[o.Status]++
	}
	res.Duration = time.Since(start)

	log.Info().
		Int("providers", len(roster)).
		Int("confirmed", res.ByStatus[model.ConfirmationConfirmed]).
		Int("no_candidate", res.ByStatus[model.ConfirmationNoCandidate]).
		Int("ambiguous", res.ByStatus[model.ConfirmationAmbiguous]).
		Int("license_mismatch", res.ByStatus[model.ConfirmationLicenseMismatch]).
		Str("duration", res.Duration.String()).
		Msg("licenses triangulated")

	return res
}
