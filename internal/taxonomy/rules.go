// Package taxonomy maps registry taxonomy codes to roles and specialties.
package taxonomy

import (
	"strings"

	"github.com/gyeh/pcroster/internal/model"
)

// PhysicianGrouping is the taxonomy grouping that defines the physician role.
const PhysicianGrouping = "Allopathic & Osteopathic Physicians"

// scope selects which taxonomy rows a rule draws its codes from.
type scope int

const (
	allRows scope = iota
	primaryCareRows
	physicianRows
)

type ruleDef struct {
	label string
	scope scope
	// classifications filters rows by classification; empty keeps every row
	// in scope.
	classifications []string
}

// Declaration order is significant: the last matching rule sets the single
// valued Role or Specialty.
var roleDefs = []ruleDef{
	{model.RoleMiscOther, allRows, []string{"Legal Medicine", "Specialist"}},
	{model.RolePodiatrist, allRows, []string{"Podiatrist"}},
	{model.RoleOptometrist, allRows, []string{"Optometrist"}},
	{model.RoleCaseManagement, allRows, []string{"Case Management"}},
	{model.RolePsychologist, allRows, []string{"Psychologist"}},
	{model.RoleOrganization, primaryCareRows, []string{
		"Clinic/Center",
		"General Acute Care Hospital",
		"Nursing Facility/Intermediate Care Facility",
		"Hospice Care, Community Based",
	}},
	{model.RoleClinicalNurseSpecialist, primaryCareRows, []string{"Clinical Nurse Specialist"}},
	{model.RoleCertifiedNurseMidwife, primaryCareRows, []string{"Advanced Practice Midwife", "Midwife"}},
	{model.RoleNurse, primaryCareRows, []string{"Registered Nurse"}},
	{model.RoleStudent, primaryCareRows, []string{"Student in an Organized Health Care Education/Training Program"}},
	{model.RoleNursePractitioner, primaryCareRows, []string{"Nurse Practitioner"}},
	{model.RolePhysicianAssistant, primaryCareRows, []string{"Physician Assistant"}},
	{model.RolePhysician, physicianRows, nil},
}

// Emergency medicine is drawn from every physician row, excluded or not,
// because the registry often lists it for primary-care clinicians.
var specialtyDefs = []ruleDef{
	{model.SpecialtyEmergencyMedicine, physicianRows, []string{model.SpecialtyEmergencyMedicine}},
	{model.SpecialtyIntegrativeMedicine, primaryCareRows, []string{model.SpecialtyIntegrativeMedicine}},
	{model.SpecialtyPreventiveMedicine, primaryCareRows, []string{model.SpecialtyPreventiveMedicine}},
	{model.SpecialtyInternalMedicine, primaryCareRows, []string{model.SpecialtyInternalMedicine}},
	{model.SpecialtyFamilyMedicine, primaryCareRows, []string{model.SpecialtyFamilyMedicine}},
	{model.SpecialtyGeneralPractice, primaryCareRows, []string{model.SpecialtyGeneralPractice}},
	{model.SpecialtyObGyn, primaryCareRows, []string{model.SpecialtyObGyn}},
	{model.SpecialtyPediatrics, primaryCareRows, []string{model.SpecialtyPediatrics}},
}

// Rule pairs a label with the taxonomy codes that imply it.
type Rule struct {
	Label string
	Codes CodeSet
}

// Rules are the ordered rule tables built once per run.
type Rules struct {
	Roles       []Rule
	Specialties []Rule
	// Exclusion holds the internal-medicine subspecialty codes that disqualify
	// an immunization-only biller.
	Exclusion CodeSet
}

// BuildRules derives the role, specialty and exclusion code sets from the
// taxonomy table.
func BuildRules(table []model.TaxonomyCode) *Rules {
	r := &Rules{
		Roles:       make([]Rule, 0, len(roleDefs)),
		Specialties: make([]Rule, 0, len(specialtyDefs)),
		Exclusion:   NewCodeSet(),
	}
	for _, d := range roleDefs {
		r.Roles = append(r.Roles, Rule{Label: d.label, Codes: d.codes(table)})
	}
	for _, d := range specialtyDefs {
		r.Specialties = append(r.Specialties, Rule{Label: d.label, Codes: d.codes(table)})
	}
	for _, row := range table {
		if row.InternalMedicineSubspecialtyExclude {
			r.Exclusion = merge(r.Exclusion, NewCodeSet(row.Code))
		}
	}
	return r
}

func (d ruleDef) codes(table []model.TaxonomyCode) CodeSet {
	var codes []string
	for _, row := range table {
		if !d.inScope(row) {
			continue
		}
		if len(d.classifications) > 0 && !containsTrimmed(d.classifications, row.Classification) {
			continue
		}
		codes = append(codes, row.Code)
	}
	return NewCodeSet(codes...)
}

func (d ruleDef) inScope(row model.TaxonomyCode) bool {
	switch d.scope {
	case primaryCareRows:
		return !row.Exclude
	case physicianRows:
		return strings.TrimSpace(row.Grouping) == PhysicianGrouping
	default:
		return true
	}
}

func containsTrimmed(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func merge(dst, src CodeSet) CodeSet {
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}
