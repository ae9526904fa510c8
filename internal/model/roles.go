package model

// Role labels. Physician Assistant keeps the licensing board's terminology.
const (
	RoleMiscOther               = "Misc Other"
	RolePodiatrist              = "Podiatrist"
	RoleOptometrist             = "Optometrist"
	RoleCaseManagement          = "Case Management"
	RolePsychologist            = "Psychologist"
	RoleOrganization            = "Organization"
	RoleClinicalNurseSpecialist = "Clinical Nurse Specialist"
	RoleCertifiedNurseMidwife   = "Certified Nursing Midwife"
	RoleNurse                   = "Nurse"
	RoleStudent                 = "Student"
	RoleNursePractitioner       = "Nurse Practitioner"
	RolePhysicianAssistant      = "Physician Assistant"
	RolePhysician               = "Physician"
)

// Specialty labels, matching taxonomy classification names.
const (
	SpecialtyEmergencyMedicine   = "Emergency Medicine"
	SpecialtyIntegrativeMedicine = "Integrative Medicine"
	SpecialtyPreventiveMedicine  = "Preventive Medicine"
	SpecialtyInternalMedicine    = "Internal Medicine"
	SpecialtyFamilyMedicine      = "Family Medicine"
	SpecialtyGeneralPractice     = "General Practice"
	SpecialtyObGyn               = "Obstetrics & Gynecology"
	SpecialtyPediatrics          = "Pediatrics"
)

// Derived specialty labels that are not specialty names.
const (
	DerivedUnknown  = "Unknown"
	DerivedMultiple = "Multiple specialties"
)

// Unconfirmed is the sentinel for license and specialty fields the
// triangulator could not confirm.
const Unconfirmed = "Unconfirmed"

// Confirmation statuses recorded next to the confirmed license.
const (
	ConfirmationConfirmed       = "confirmed"
	ConfirmationNoCandidate     = "no-candidate"
	ConfirmationAmbiguous       = "ambiguous"
	ConfirmationLicenseMismatch = "license-mismatch"
)

// Roster inclusion basis.
const (
	BasisCorePrevention   = "core-prevention"
	BasisImmunizationOnly = "immunization-only"
)

// PrimaryCareSpecialties lists the primary-care-adjacent specialties followed
// by emergency medicine, in the order used for derived specialty.
var PrimaryCareSpecialties = []string{
	SpecialtyIntegrativeMedicine,
	SpecialtyPreventiveMedicine,
	SpecialtyInternalMedicine,
	SpecialtyFamilyMedicine,
	SpecialtyGeneralPractice,
	SpecialtyObGyn,
	SpecialtyPediatrics,
	SpecialtyEmergencyMedicine,
}

// EnrichableRoles are the roles the licensing lookup can search for.
var EnrichableRoles = []string{
	RolePhysician,
	RolePhysicianAssistant,
	RoleClinicalNurseSpecialist,
	RoleNurse,
	RoleNursePractitioner,
	RoleCertifiedNurseMidwife,
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// IsEnrichableRole reports whether role is in EnrichableRoles.
func IsEnrichableRole(role string) bool {
	return contains(EnrichableRoles, role)
}
