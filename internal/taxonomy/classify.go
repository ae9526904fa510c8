package taxonomy

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/pcroster/internal/model"
)

// Named two-specialty combinations. Any other pair is reported as multiple
// specialties.
var dualSpecialties = map[[2]string]string{
	pair(model.SpecialtyInternalMedicine, model.SpecialtyPediatrics):        "Med-Peds",
	pair(model.SpecialtyInternalMedicine, model.SpecialtyFamilyMedicine):    "IM-FM",
	pair(model.SpecialtyEmergencyMedicine, model.SpecialtyInternalMedicine): "EM-IM",
	pair(model.SpecialtyFamilyMedicine, model.SpecialtyObGyn):               "FM-OBGYN",
	pair(model.SpecialtyFamilyMedicine, model.SpecialtyPediatrics):          "FM-Peds",
	pair(model.SpecialtyFamilyMedicine, model.SpecialtyEmergencyMedicine):   "FM-EM",
}

func pair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Classify sets the role and specialty fields of p. Every matching rule is
// recorded in Roles or Specialties; the single-valued Role and Specialty take
// the label of the last matching rule in declaration order, and RoleCodes and
// SpecialtyCodes hold the slot codes that rule matched.
func (r *Rules) Classify(p *model.LinkedProvider) {
	codes := p.Registry.TaxonomyCodes

	p.Role, p.Roles, p.RoleCodes = "", nil, nil
	for _, rule := range r.Roles {
		if m := rule.Codes.Matches(codes); len(m) > 0 {
			p.Role = rule.Label
			p.Roles = append(p.Roles, rule.Label)
			p.RoleCodes = m
		}
	}

	p.Specialty, p.Specialties, p.SpecialtyCodes = "", nil, nil
	for _, rule := range r.Specialties {
		if m := rule.Codes.Matches(codes); len(m) > 0 {
			p.Specialty = rule.Label
			p.Specialties = append(p.Specialties, rule.Label)
			p.SpecialtyCodes = m
		}
	}

	p.IsRole = model.NewRoleFlags(p.Roles)
	p.IsSpecialty = model.NewSpecialtyFlags(p.Specialties)

	var matched []string
	for _, s := range model.PrimaryCareSpecialties {
		if p.HasSpecialty(s) {
			matched = append(matched, s)
		}
	}
	p.SpecialtyCount = int32(len(matched))
	p.DerivedSpecialty = DerivedSpecialty(matched)
}

// DerivedSpecialty collapses the set of matched specialties into one label.
func DerivedSpecialty(matched []string) string {
	switch len(matched) {
	case 0:
		return model.DerivedUnknown
	case 1:
		return matched[0]
	case 2:
		if name, ok := dualSpecialties[pair(matched[0], matched[1])]; ok {
			return name
		}
		return model.DerivedMultiple
	default:
		return model.DerivedMultiple
	}
}

// Result summarizes a classification pass.
type Result struct {
	ByRole             map[string]int
	ByDerivedSpecialty map[string]int
	MultiRole          int
	Duration           time.Duration
}

// ClassifyAll classifies every roster row in place.
func (r *Rules) ClassifyAll(log zerolog.Logger, roster []model.LinkedProvider) *Result {
	start := time.Now()
	res := &Result{
		ByRole:             make(map[string]int),
		ByDerivedSpecialty: make(map[string]int),
	}
	for i := range roster {
		p := &roster[i]
		r.Classify(p)
		res.ByRole[p.Role]++
		res.ByDerivedSpecialty[p.DerivedSpecialty]++
		if len(p.Roles) > 1 {
			res.MultiRole++
		}
	}
	res.Duration = time.Since(start)

	log.Info().
		Int("providers", len(roster)).
		Int("physicians", res.ByRole[model.RolePhysician]).
		Int("unclassified", res.ByRole[""]).
		Int("multi_role", res.MultiRole).
		Int("unknown_specialty", res.ByDerivedSpecialty[model.DerivedUnknown]).
		Str("duration", res.Duration.String()).
		Msg("providers classified")

	return res
}
